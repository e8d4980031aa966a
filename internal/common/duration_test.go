package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// indexerTimings mirrors the duration settings of the indexer config section.
type indexerTimings struct {
	PollInterval      Duration `json:"poll_interval" yaml:"poll_interval" toml:"poll_interval"`
	FetchRetryBackoff Duration `json:"fetch_retry_backoff" yaml:"fetch_retry_backoff" toml:"fetch_retry_backoff"`
	LeaseTTL          Duration `json:"lease_ttl" yaml:"lease_ttl" toml:"lease_ttl"`
}

func TestDuration_ConfigFormats(t *testing.T) {
	t.Parallel()

	want := indexerTimings{
		PollInterval:      NewDuration(5 * time.Second),
		FetchRetryBackoff: NewDuration(500 * time.Millisecond),
		LeaseTTL:          NewDuration(time.Minute),
	}

	tests := []struct {
		name   string
		decode func(*indexerTimings) error
	}{
		{
			name: "json",
			decode: func(v *indexerTimings) error {
				return json.Unmarshal([]byte(`{"poll_interval":"5s","fetch_retry_backoff":"500ms","lease_ttl":"1m"}`), v)
			},
		},
		{
			name: "yaml",
			decode: func(v *indexerTimings) error {
				return yaml.Unmarshal([]byte("poll_interval: 5s\nfetch_retry_backoff: 500ms\nlease_ttl: 1m\n"), v)
			},
		},
		{
			name: "toml",
			decode: func(v *indexerTimings) error {
				_, err := toml.Decode("poll_interval = \"5s\"\nfetch_retry_backoff = \"500ms\"\nlease_ttl = \"1m\"\n", v)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got indexerTimings
			require.NoError(t, tt.decode(&got))
			require.Equal(t, want, got)
		})
	}
}

func TestDuration_UnmarshalText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{input: "5s", want: 5 * time.Second},
		{input: "1h30m", want: 90 * time.Minute},
		{input: "0s"},
		{input: "30", wantErr: true},
		{input: "", wantErr: true},
		{input: "one minute", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				require.ErrorContains(t, err, "invalid duration")
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_MarshalKeepsConfigReadable(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(indexerTimings{
		PollInterval: NewDuration(5 * time.Second),
		LeaseTTL:     NewDuration(time.Minute),
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"poll_interval":"5s","fetch_retry_backoff":"0s","lease_ttl":"1m0s"}`, string(data))

	out, err := yaml.Marshal(indexerTimings{FetchRetryBackoff: NewDuration(500 * time.Millisecond)})
	require.NoError(t, err)
	require.Contains(t, string(out), "fetch_retry_backoff: 500ms")
}

func TestDuration_JSONSchema(t *testing.T) {
	t.Parallel()

	schema := Duration{}.JSONSchema()
	require.Equal(t, "string", schema.Type)
	require.Contains(t, schema.Description, "Duration expressed in units")
	require.Contains(t, schema.Examples, "300ms")
}
