package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/EnterStudios/fabricstated/pkg/config"
	"github.com/EnterStudios/fabricstated/pkg/fabricstate"
)

var (
	dumpConfigPath  string
	dumpAlpmEnabled bool
	dumpVRF         uint32
	dumpSnapshotOut string
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Compile a config file and print its resolved routes",
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpConfigPath, "config", "c", "", "path to the YAML configuration file (required)")
	dumpCmd.Flags().BoolVar(&dumpAlpmEnabled, "alpm", true, "synthesize the ALPM default routes in the default VRF")
	dumpCmd.Flags().Uint32Var(&dumpVRF, "vrf", 0, "VRF to dump")
	dumpCmd.Flags().StringVar(&dumpSnapshotOut, "snapshot", "", "also write a warm-boot JSON snapshot to this path, loadable with fabricstated load")
	dumpCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	f, err := os.Open(dumpConfigPath)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	cfg, err := config.Load(f)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	base := fabricstate.New(dumpAlpmEnabled)
	compiled, err := config.Apply(base, cfg)
	if err != nil {
		return fmt.Errorf("compiling config: %w", err)
	}

	if dumpSnapshotOut != "" {
		if err := writeSnapshot(dumpSnapshotOut, compiled); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
	}

	table, ok := compiled.RouteTables.Get(fabricstate.RouterID(dumpVRF))
	if !ok {
		fmt.Printf("vrf %d: no route table\n", dumpVRF)
		return nil
	}

	fmt.Printf("vrf %d, generation %d\n", dumpVRF, compiled.Generation)
	fmt.Println("-- IPv4 --")
	for _, rt := range table.RibV4.All() {
		fmt.Printf("%s\n", rt)
	}
	fmt.Println("-- IPv6 --")
	for _, rt := range table.RibV6.All() {
		fmt.Printf("%s\n", rt)
	}
	return nil
}

// writeSnapshot renders s through SwitchState.ToWire and writes it as
// indented JSON, the warm-boot format fabricstated load reads back (spec §6,
// §8's serialize ∘ deserialize = identity law).
func writeSnapshot(path string, s fabricstate.SwitchState) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(s.ToWire())
}
