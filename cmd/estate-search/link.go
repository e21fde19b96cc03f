// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/estate-search/internal/query"
	"github.com/pdiddy/estate-search/pkg/types"
)

var linkCmd = &cobra.Command{
	Use:   "link [url-or-query...]",
	Short: "Print the canonical shareable link for a search",
	Long: `Link normalizes a URL, path or query string into the canonical shareable
link: unknown values dropped, defaults omitted, keys sorted. With no
arguments the search is built from the same filter flags as search.

Equal searches always produce the same link.`,
	RunE: runLink,
}

func init() {
	f := linkCmd.Flags()
	f.String("load", "", "print the link of a saved search file")
	addFilterFlags(linkCmd)

	rootCmd.AddCommand(linkCmd)
}

func runLink(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		for _, raw := range args {
			writeLink(os.Stdout, query.ParseString(raw))
		}
		return nil
	}

	base := types.SearchIntent{}.Normalize()
	if path, _ := cmd.Flags().GetString("load"); path != "" {
		saved, err := query.ReadSavedSearch(path)
		if err != nil {
			return err
		}
		base = saved.ToIntent()
	}

	intent, invalid := stageIntent(cmd, base)
	for _, v := range invalid {
		fmt.Fprintf(os.Stderr, "Warning: %v (ignored)\n", v.Error())
	}
	writeLink(os.Stdout, intent)
	return nil
}

func writeLink(w io.Writer, intent types.SearchIntent) {
	fmt.Fprintf(w, "%s\t%s\n", query.Link("/properties", intent), intent.Describe())
}
