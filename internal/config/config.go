// Package config wires the CLI surface of spec.md §6 ("TCP port, data
// directory path, cache entry limit, and an optional telemetry
// endpoint") onto a cobra.Command, with viper binding each flag to a
// matching DAGSTORE_* environment variable — generalizing the teacher's
// env-var-only configuration (cmd/node reads NODE_ID etc. straight from
// os.Getenv) to the flag+env layering cobra/viper give CLI binaries in
// the rest of the example corpus.
package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Server holds the configuration a dagstored process needs to start.
type Server struct {
	Listen            string
	DataDir           string
	CacheSize         int
	TelemetryEndpoint string
	Development       bool
}

// BindServerFlags registers the server's flags on cmd and binds each to a
// DAGSTORE_* environment variable via v. Call LoadServer once flags are
// parsed (in RunE or a PreRunE) to read the resolved values.
func BindServerFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.Flags()
	flags.String("listen", ":8080", "TCP address to listen on")
	flags.String("data-dir", "./data", "directory for the embedded blob store")
	flags.Int("cache-size", 4096, "maximum number of nodes held in the LRU cache")
	flags.String("telemetry-endpoint", "", "optional telemetry endpoint (recorded in the startup log; nothing is sent to it)")
	flags.Bool("dev", false, "use human-readable development logging")

	v.SetEnvPrefix("dagstore")
	v.AutomaticEnv()
	_ = v.BindPFlag("listen", flags.Lookup("listen"))
	_ = v.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = v.BindPFlag("cache_size", flags.Lookup("cache-size"))
	_ = v.BindPFlag("telemetry_endpoint", flags.Lookup("telemetry-endpoint"))
	_ = v.BindPFlag("dev", flags.Lookup("dev"))
}

// LoadServer reads the bound flags/env into a Server config.
func LoadServer(v *viper.Viper) Server {
	return Server{
		Listen:            v.GetString("listen"),
		DataDir:           v.GetString("data_dir"),
		CacheSize:         v.GetInt("cache_size"),
		TelemetryEndpoint: v.GetString("telemetry_endpoint"),
		Development:       v.GetBool("dev"),
	}
}

// Client holds the configuration a dagcli invocation needs.
type Client struct {
	ServerAddr string
}

// BindClientFlags registers dagcli's flags on cmd.
func BindClientFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.PersistentFlags()
	flags.String("server", "http://127.0.0.1:8080", "dagstored address to connect to")

	v.SetEnvPrefix("dagstore")
	v.AutomaticEnv()
	_ = v.BindPFlag("server", flags.Lookup("server"))
}

// LoadClient reads the bound flags/env into a Client config.
func LoadClient(v *viper.Viper) Client {
	return Client{ServerAddr: v.GetString("server")}
}
