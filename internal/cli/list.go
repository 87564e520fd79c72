package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/keymoments/internal/models"
	"github.com/nguyentantai21042004/keymoments/internal/store"
)

func NewListCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list <video-id>",
		Short: "List the key moments stored for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(deps.Config.Paths.Database); os.IsNotExist(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "No key moments found")
				return nil
			}

			db, err := store.Open(deps.Config.Paths.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			return listMoments(cmd.Context(), cmd.OutOrStdout(), db.KeyMoments(), args[0])
		},
	}
}

// listMoments prints one line per stored moment, earliest first. Re-runs
// append rows, so the same range can appear more than once.
func listMoments(ctx context.Context, w io.Writer, s store.KeyMomentStore, videoID string) error {
	moments, err := s.ListByVideoID(ctx, videoID)
	if err != nil {
		return err
	}
	if len(moments) == 0 {
		fmt.Fprintln(w, "No key moments found")
		return nil
	}

	for _, m := range moments {
		fmt.Fprintf(w, "%s  %8s - %-8s  %s  %s\n",
			m.CreatedAt.Format("2006-01-02 15:04"),
			models.FormatSeconds(m.Start), models.FormatSeconds(m.End),
			m.ClipPath, firstLine(m.Description))
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
