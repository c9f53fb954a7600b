package peers

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/entity"
)

func TestParse(t *testing.T) {
	input := `
# mesh peers
node1.example.com:7946
  203.0.113.5 : 7000
node2.example.com:abc
node3.example.com:70000
:80
node4.example.com
node1.example.com:8000
`
	list, warnings, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []entity.Peer{
		{Host: "node1.example.com", Port: 8000},
		{Host: "203.0.113.5", Port: 7000},
	}, list)
	require.Len(t, warnings, 4)
	assert.True(t, errors.Is(warnings[0].Reason, domain.ErrInvalidPort))
	assert.True(t, errors.Is(warnings[1].Reason, domain.ErrInvalidPort))
	assert.True(t, errors.Is(warnings[2].Reason, domain.ErrInvalidPeer))
	assert.True(t, errors.Is(warnings[3].Reason, domain.ErrInvalidPeer))
	assert.Equal(t, 5, warnings[0].Line)
}

func TestParse_OnlyCommentsIsError(t *testing.T) {
	_, _, err := Parse(strings.NewReader("# nothing\n\n"))
	assert.ErrorIs(t, err, domain.ErrNoPeers)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    entity.Peer
		wantErr error
	}{
		{name: "hostname", line: "node1.example.com:7946", want: entity.Peer{Host: "node1.example.com", Port: 7946}},
		{name: "ipv4", line: "203.0.113.5:1", want: entity.Peer{Host: "203.0.113.5", Port: 1}},
		{name: "port zero", line: "node1:0", wantErr: domain.ErrInvalidPort},
		{name: "negative port", line: "node1:-5", wantErr: domain.ErrInvalidPort},
		{name: "no colon", line: "node1", wantErr: domain.ErrInvalidPeer},
		{name: "empty port", line: "node1:", wantErr: domain.ErrInvalidPeer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peers.txt")
	require.NoError(t, os.WriteFile(path, []byte("node1.example.com:7946\nbad\n"), 0o600))

	list, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
