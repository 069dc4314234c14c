// Command dagcli is a thin client for dagstored, supplementing the core
// server with the kind of interactive client the original implementation
// carried (original_source/dag-store/src/client) and the teacher's own
// cmd/node and cmd/coordinator binaries, which are themselves small
// net/http clients over shared domain types.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dagcache/dagstore/internal/config"
	"github.com/dagcache/dagstore/internal/rpcapi"
)

func main() {
	v := viper.New()
	root := &cobra.Command{Use: "dagcli", Short: "client for the content-addressed DAG store"}
	config.BindClientFlags(root, v)

	root.AddCommand(putNodeCmd(v), getNodeCmd(v), getNodesCmd(v))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func putNodeCmd(v *viper.Viper) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "put-node",
		Short: "put_one: store a single node with no links",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadClient(v)
			msg := rpcapi.NodeMsg{NodeData: []byte(data)}

			var reply rpcapi.HashMsg
			if err := postJSON(cfg.ServerAddr+"/v1/node", msg, &reply); err != nil {
				return err
			}
			hash, err := rpcapi.ToDomainHash(reply)
			if err != nil {
				return err
			}
			fmt.Println(hash.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "opaque node payload")
	return cmd
}

func getNodeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "get-node [hash]",
		Short: "get_one: fetch a node plus its cache-resident neighborhood",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadClient(v)
			resp, err := http.Get(cfg.ServerAddr + "/v1/node/" + args[0])
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			return printResponse(resp)
		},
	}
}

func getNodesCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "get-nodes [hash]",
		Short: "get_recursive: stream every node reachable from hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadClient(v)
			resp, err := http.Get(cfg.ServerAddr + "/v1/nodes/" + args[0])
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			dec := json.NewDecoder(resp.Body)
			for dec.More() {
				var item rpcapi.StreamItem
				if err := dec.Decode(&item); err != nil {
					return err
				}
				h, _ := rpcapi.ToDomainHash(item.Hash)
				if item.Error != "" {
					fmt.Printf("%s: error: %s\n", h, item.Error)
					continue
				}
				fmt.Printf("%s: %d links, %d bytes\n", h, len(item.Node.NodeLinks), len(item.Node.NodeData))
			}
			return nil
		},
	}
}

func postJSON(url string, body, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		text, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("dagcli: server returned %s: %s", resp.Status, text)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func printResponse(resp *http.Response) error {
	if resp.StatusCode >= 300 {
		text, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("dagcli: server returned %s: %s", resp.Status, text)
	}
	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	fmt.Println(string(text))
	return nil
}
