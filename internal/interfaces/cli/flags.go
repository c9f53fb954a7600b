package cli

import (
	"github.com/spf13/cobra"

	"github.com/lite-lake/peerdns/internal/config"
	"github.com/lite-lake/peerdns/internal/domain/valueobject"
)

// flagSet holds the persistent flags. Only flags set on the command line
// override the file, so unset flags never clobber configured values.
type flagSet struct {
	values      *config.Config
	credentials map[string]string
}

func newFlagSet() *flagSet {
	return &flagSet{values: config.Default()}
}

func (f *flagSet) bind(cmd *cobra.Command) {
	v := f.values
	fs := cmd.PersistentFlags()

	fs.StringVar(&v.Provider, "provider", v.Provider, "DNS provider (cloudflare, aliyun, tencent, memory)")
	fs.StringVar(&v.Zone, "zone", v.Zone, "Provider zone, defaults to the domain")
	fs.StringToStringVar(&f.credentials, "credential", nil, "Provider credential as key=ENV_VAR")
	fs.StringVar(&v.RecordName, "record-name", v.RecordName, "SRV record name, e.g. _mesh._tcp.example.com")
	fs.StringVarP(&v.Strategy, "strategy", "s", v.Strategy, "Publication strategy (SRV or TXT)")
	fs.StringVarP(&v.Domain, "domain", "d", v.Domain, "Domain the records live under")
	fs.StringVar(&v.Prefix, "prefix", v.Prefix, "Label prefix for alias and TXT records")
	fs.DurationVar(&v.Timeout, "timeout", v.Timeout, "Connect timeout per probe attempt")
	fs.IntVar(&v.TTL, "ttl", v.TTL, "TTL of published records")
	fs.IntVar(&v.Weight, "weight", v.Weight, "SRV weight")
	fs.IntVar(&v.Retries, "retries", v.Retries, "Probe attempts per peer and store attempts per call")
	fs.IntVar(&v.MaxRecords, "max-records", v.MaxRecords, "Publish at most this many peers (0 = all)")
	fs.IntVar(&v.PriorityStart, "priority-start", v.PriorityStart, "SRV priority of the fastest peer")
	fs.IntVar(&v.PriorityStep, "priority-step", v.PriorityStep, "SRV priority increment per rank")
	fs.IntVar(&v.Concurrency, "concurrency", v.Concurrency, "Peers probed in parallel")
	fs.StringVarP(&v.PeersFile, "peers", "p", v.PeersFile, "Peer list file, one host:port per line")
	fs.StringVar(&v.Backup.Backend, "backup-backend", v.Backup.Backend, "Snapshot backend (file or bolt)")
	fs.StringVar(&v.Backup.Path, "backup-path", v.Backup.Path, "Snapshot directory")
	fs.IntVar(&v.Backup.Retention, "backup-retention", v.Backup.Retention, "Snapshots kept per record set (0 = keep all)")
	fs.StringVar(&v.MetricsFile, "metrics-file", v.MetricsFile, "Write metrics in textfile format to this path")
	fs.BoolVar(&v.Debug, "debug", v.Debug, "Enable debug logging")
	fs.BoolVar(&v.DryRun, "dry-run", v.DryRun, "Read the zone but send no writes")
}

var overlays = map[string]func(dst, src *config.Config){
	"provider":         func(d, s *config.Config) { d.Provider = s.Provider },
	"zone":             func(d, s *config.Config) { d.Zone = s.Zone },
	"record-name":      func(d, s *config.Config) { d.RecordName = s.RecordName },
	"strategy":         func(d, s *config.Config) { d.Strategy = s.Strategy },
	"domain":           func(d, s *config.Config) { d.Domain = s.Domain },
	"prefix":           func(d, s *config.Config) { d.Prefix = s.Prefix },
	"timeout":          func(d, s *config.Config) { d.Timeout = s.Timeout },
	"ttl":              func(d, s *config.Config) { d.TTL = s.TTL },
	"weight":           func(d, s *config.Config) { d.Weight = s.Weight },
	"retries":          func(d, s *config.Config) { d.Retries = s.Retries },
	"max-records":      func(d, s *config.Config) { d.MaxRecords = s.MaxRecords },
	"priority-start":   func(d, s *config.Config) { d.PriorityStart = s.PriorityStart },
	"priority-step":    func(d, s *config.Config) { d.PriorityStep = s.PriorityStep },
	"concurrency":      func(d, s *config.Config) { d.Concurrency = s.Concurrency },
	"peers":            func(d, s *config.Config) { d.PeersFile = s.PeersFile },
	"backup-backend":   func(d, s *config.Config) { d.Backup.Backend = s.Backup.Backend },
	"backup-path":      func(d, s *config.Config) { d.Backup.Path = s.Backup.Path },
	"backup-retention": func(d, s *config.Config) { d.Backup.Retention = s.Backup.Retention },
	"metrics-file":     func(d, s *config.Config) { d.MetricsFile = s.MetricsFile },
	"debug":            func(d, s *config.Config) { d.Debug = s.Debug },
	"dry-run":          func(d, s *config.Config) { d.DryRun = s.DryRun },
}

func (f *flagSet) overlay(cmd *cobra.Command, cfg *config.Config) {
	for name, apply := range overlays {
		if cmd.Flags().Changed(name) {
			apply(cfg, f.values)
		}
	}
	for key, env := range f.credentials {
		cfg.Credentials[key] = valueobject.SecretRef{Env: env}
	}
}
