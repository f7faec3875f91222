// Command appconf inspects and edits hierarchical config files: get and set
// dotted keys and dump the effective document after private-file merging and
// interpolation.
package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"appconf"
)

func main() {
	root := &cobra.Command{
		Use:   "appconf",
		Short: "Inspect and edit hierarchical config files",
	}
	root.AddCommand(getCmd(), setCmd(), dumpCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <file> <key>",
		Short: "Print the value at a dotted key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := appconf.LoadStore(args[0])
			if err != nil {
				return err
			}
			value := store.Select(args[1])
			if value == nil {
				return fmt.Errorf("key %q not found in %q", args[1], args[0])
			}
			fmt.Printf("%v\n", value)
			return nil
		},
	}
}

func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <file> <key> <value>",
		Short: "Set the value at a dotted key and save in place",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := appconf.NewStoreProvider(args[0])
			if err != nil {
				return err
			}
			if err := provider.Set(args[1], parseScalar(args[2])); err != nil {
				return err
			}
			return provider.Save("")
		},
	}
}

func dumpCmd() *cobra.Command {
	var flat bool
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the effective document after merging and interpolation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := appconf.LoadStore(args[0])
			if err != nil {
				return err
			}
			if flat {
				flattened := store.Flatten()
				paths := make([]string, 0, len(flattened))
				for path := range flattened {
					paths = append(paths, path)
				}
				sort.Strings(paths)
				for _, path := range paths {
					fmt.Printf("%s: %v\n", path, flattened[path])
				}
				return nil
			}
			encoder := yaml.NewEncoder(os.Stdout)
			encoder.SetIndent(2)
			defer encoder.Close()
			return encoder.Encode(store.Root())
		},
	}
	cmd.Flags().BoolVar(&flat, "flat", false, "print one dotted path per line")
	return cmd
}

// parseScalar interprets a CLI value as bool, int, or float where possible,
// keeping it a string otherwise.
func parseScalar(s string) any {
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return s
}
