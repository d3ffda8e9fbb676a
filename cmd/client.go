package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	internalApp "github.com/haierkeys/fast-note-client/internal/app"
	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/haierkeys/fast-note-client/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// withClient loads the config, restores the saved session and runs fn
// withClient 加载配置并恢复已保存的会话后执行 fn
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *internalApp.Client) error) error {
	cfg, lg, err := loadConfig()
	if err != nil {
		return err
	}
	defer lg.Sync()

	c, err := internalApp.NewClient(cfg, lg)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c.Start(ctx)
	return fn(ctx, c)
}

// requireLogin 未登录时返回错误
func requireLogin(c *internalApp.Client) error {
	if !c.Session.IsAuthenticated() {
		return errors.New("not logged in, run `fast-note login` first")
	}
	return nil
}

func resultErr(r store.Result) error {
	if r.Success {
		return nil
	}
	return errors.New(r.Error)
}

func newTable(header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.Style().Options.SeparateRows = false

	row := make(table.Row, 0, len(header))
	for _, h := range header {
		row = append(row, text.FgGreen.Sprint(h))
	}
	t.AppendHeader(row)
	return t
}

func renderNotes(notes []*domain.Note, folders []*domain.Folder) {
	names := make(map[string]string, len(folders))
	for _, f := range folders {
		names[f.ID] = f.Name
	}

	t := newTable("ID", "Title", "Folder", "Tags", "Favorite", "Updated")
	for _, n := range notes {
		folder := ""
		if n.FolderID != nil {
			folder = names[*n.FolderID]
		}
		fav := ""
		if n.IsFavorite {
			fav = "*"
		}
		t.AppendRow(table.Row{n.ID, n.Title, folder, strings.Join(n.Tags, ","), fav, formatTime(n.UpdatedAt)})
	}
	t.AppendFooter(table.Row{"", "", "", "", "Total", len(notes)})
	t.Render()
}

func renderNote(n *domain.Note) {
	t := newTable("Field", "Value")
	t.AppendRows([]table.Row{
		{"id", n.ID},
		{"title", n.Title},
		{"tags", strings.Join(n.Tags, ",")},
		{"favorite", n.IsFavorite},
		{"archived", n.IsArchived},
		{"updated", formatTime(n.UpdatedAt)},
	})
	t.Render()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}
