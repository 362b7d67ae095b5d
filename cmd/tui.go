package cmd

import (
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/tradewire/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	st := buildStack(cfg)
	defer st.Close()

	cats, err := activeCategories(st.service)
	if err != nil {
		return err
	}

	opts := tui.RunOpts{
		Service:     st.service,
		Cache:       st.cache,
		Interval:    cfg.RefreshDuration(),
		Version:     version,
		OnlyUrgent:  flagUrgent,
		CheckUpdate: true,
	}
	if len(flagCategories) > 0 {
		opts.Categories = cats
	}
	return tui.Run(opts)
}
