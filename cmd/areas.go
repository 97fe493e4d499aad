package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/segeodata/deso-cli/internal/codes"
)

var areasCmd = &cobra.Command{
	Use:   "areas",
	Short: "Resolve DeSO codes to kommun and län",
}

var areasResolveCmd = &cobra.Command{
	Use:   "resolve <deso-code>...",
	Short: "Show the kommun and län of one or more DeSO codes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := codes.Default()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "DESO\tKOMMUN\tLAN")
		for _, code := range args {
			area, err := registry.Resolve(code)
			if err != nil {
				_ = w.Flush()
				return err
			}
			_, _ = fmt.Fprintf(w, "%s\t%s %s\t%s %s\n",
				area.Deso, area.KommunCode, area.Kommun, area.LanCode, area.Lan)
		}
		return w.Flush()
	},
}

var areasKommunerCmd = &cobra.Command{
	Use:   "kommuner",
	Short: "List all known kommun codes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry, err := codes.Default()
		if err != nil {
			return err
		}
		return listCodes(os.Stdout, registry.Kommuner(), func(c string) string {
			name, _ := registry.KommunName(c)
			return name
		})
	},
}

var areasLanCmd = &cobra.Command{
	Use:   "lan",
	Short: "List all known län codes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry, err := codes.Default()
		if err != nil {
			return err
		}
		return listCodes(os.Stdout, registry.Lan(), func(c string) string {
			name, _ := registry.LanName(c)
			return name
		})
	},
}

func listCodes(out io.Writer, codeList []string, nameOf func(string) string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CODE\tNAME")
	for _, c := range codeList {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", c, nameOf(c))
	}
	return w.Flush()
}

func init() {
	areasCmd.AddCommand(areasResolveCmd)
	areasCmd.AddCommand(areasKommunerCmd)
	areasCmd.AddCommand(areasLanCmd)
	rootCmd.AddCommand(areasCmd)
}
