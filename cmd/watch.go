package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/tradewire/internal/pipeline"
	"github.com/matheuskafuri/tradewire/internal/poller"
)

var (
	flagWatchOnce bool
	flagWatchJSON bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the filtered headline stream on every refresh",
	Long: `Run the pipeline headlessly and print the filtered headlines once per
refresh interval. Use --once for a single pass and --json for one JSON
document per pass.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&flagWatchOnce, "once", false, "print a single pass and exit")
	watchCmd.Flags().BoolVar(&flagWatchJSON, "json", false, "print JSON instead of text")
}

type watchPass struct {
	At        time.Time         `json:"at"`
	Count     int               `json:"count"`
	Headlines []pipeline.Record `json:"headlines"`
}

func runWatch(cmd *cobra.Command, args []string) error {
	st := buildStack(cfg)
	defer st.Close()

	cats, err := activeCategories(st.service)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	pass := func(ctx context.Context) error {
		items, err := st.service.GetFilteredHeadlines(ctx, cats, flagUrgent)
		if err != nil {
			return err
		}
		if flagWatchJSON {
			return writeJSONPass(out, time.Now(), items)
		}
		writeTextPass(out, time.Now(), items)
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagWatchOnce {
		return pass(ctx)
	}

	p := poller.New("watch", cfg.RefreshDuration(), pass)
	if err := p.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return p.Stop()
}

func writeJSONPass(w io.Writer, at time.Time, items []pipeline.ClassifiedHeadline) error {
	return json.NewEncoder(w).Encode(watchPass{
		At:        at,
		Count:     len(items),
		Headlines: pipeline.Records(items),
	})
}

func writeTextPass(w io.Writer, at time.Time, items []pipeline.ClassifiedHeadline) {
	fmt.Fprintf(w, "── %s · %d Headlines Found ──\n", at.Format("15:04:05"), len(items))
	if len(items) == 0 {
		fmt.Fprintln(w, "No news matched your filters.")
		return
	}
	for _, it := range items {
		fmt.Fprintln(w, formatHeadline(it))
	}
	fmt.Fprintln(w, pipeline.Summarize(items).String())
}

func formatHeadline(h pipeline.ClassifiedHeadline) string {
	var b strings.Builder
	if h.Urgent {
		b.WriteString("⚠️  ")
	}
	fmt.Fprintf(&b, "%s %-7s [%s] %s", h.Sentiment.Label.Symbol(), h.Sentiment.Label, h.Category, h.Title)
	if h.URL != "" {
		b.WriteString("\n    ")
		b.WriteString(h.URL)
	}
	return b.String()
}
