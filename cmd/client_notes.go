package cmd

import (
	"context"
	"fmt"

	internalApp "github.com/haierkeys/fast-note-client/internal/app"
	"github.com/haierkeys/fast-note-client/internal/domain"

	"github.com/spf13/cobra"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Manage your notes",
}

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Manage your folders",
}

// loadNotes 拉取笔记与文件夹，写操作依赖本地缓存
func loadNotes(ctx context.Context, c *internalApp.Client) error {
	if err := requireLogin(c); err != nil {
		return err
	}
	if err := resultErr(c.Notes.FetchNotes(ctx).Result); err != nil {
		return err
	}
	return resultErr(c.Notes.FetchFolders(ctx).Result)
}

type noteFlags struct {
	title       string
	contentText string
	folder      string
	tags        []string
	favorite    bool
	archived    bool
}

func (f *noteFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.title, "title", "t", "", "note title")
	fs.StringVar(&f.contentText, "text", "", "plain-text content")
	fs.StringVar(&f.folder, "folder", "", "folder id (empty string detaches on update)")
	fs.StringSliceVar(&f.tags, "tag", nil, "tag (repeatable)")
	fs.BoolVar(&f.favorite, "favorite", false, "mark as favorite")
	fs.BoolVar(&f.archived, "archived", false, "mark as archived")
}

// patch 仅包含命令行中显式给出的字段
func (f *noteFlags) patch(cmd *cobra.Command) domain.NotePatch {
	var p domain.NotePatch
	fs := cmd.Flags()
	if fs.Changed("title") {
		p.Title = domain.Ptr(f.title)
	}
	if fs.Changed("text") {
		p.ContentText = domain.Ptr(f.contentText)
		p.Content = domain.TextDocument(f.contentText)
	}
	if fs.Changed("folder") {
		p.FolderID = domain.Ptr(f.folder)
	}
	if fs.Changed("tag") {
		p.Tags = append([]string{}, f.tags...)
	}
	if fs.Changed("favorite") {
		p.IsFavorite = domain.Ptr(f.favorite)
	}
	if fs.Changed("archived") {
		p.IsArchived = domain.Ptr(f.archived)
	}
	return p
}

func init() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, most recently updated first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *internalApp.Client) error {
				if err := loadNotes(ctx, c); err != nil {
					return err
				}
				renderNotes(c.Notes.Notes(), c.Notes.Folders())
				return nil
			})
		},
	}

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search titles and text (case-insensitive)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *internalApp.Client) error {
				if err := loadNotes(ctx, c); err != nil {
					return err
				}
				c.Notes.SetSearchQuery(args[0])
				renderNotes(c.Notes.FilteredNotes(), c.Notes.Folders())
				return nil
			})
		},
	}

	favoritesCmd := &cobra.Command{
		Use:   "favorites",
		Short: "List favorite notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *internalApp.Client) error {
				if err := loadNotes(ctx, c); err != nil {
					return err
				}
				renderNotes(c.Notes.FavoriteNotes(), c.Notes.Folders())
				return nil
			})
		},
	}

	recentCmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recently updated notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *internalApp.Client) error {
				if err := loadNotes(ctx, c); err != nil {
					return err
				}
				renderNotes(c.Notes.RecentNotes(), c.Notes.Folders())
				return nil
			})
		},
	}

	createFlags := new(noteFlags)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *internalApp.Client) error {
				if err := requireLogin(c); err != nil {
					return err
				}
				in := &domain.NoteInput{
					Title:       createFlags.title,
					ContentText: createFlags.contentText,
					Tags:        createFlags.tags,
					IsFavorite:  createFlags.favorite,
					IsArchived:  createFlags.archived,
				}
				if createFlags.contentText != "" {
					in.Content = domain.TextDocument(createFlags.contentText)
				}
				if createFlags.folder != "" {
					in.FolderID = domain.Ptr(createFlags.folder)
				}
				res := c.Notes.CreateNote(ctx, in)
				if err := resultErr(res.Result); err != nil {
					return err
				}
				renderNote(res.Note)
				return nil
			})
		},
	}
	createFlags.bind(createCmd)

	updateFlags := new(noteFlags)
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the given fields of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := updateFlags.patch(cmd)
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to update")
			}
			return withClient(cmd, func(ctx context.Context, c *internalApp.Client) error {
				if err := loadNotes(ctx, c); err != nil {
					return err
				}
				res := c.Notes.UpdateNote(ctx, args[0], patch)
				if err := resultErr(res.Result); err != nil {
					return err
				}
				if res.Note != nil {
					renderNote(res.Note)
				}
				return nil
			})
		},
	}
	updateFlags.bind(updateCmd)

	favoriteCmd := &cobra.Command{
		Use:   "favorite <id>",
		Short: "Toggle the favorite flag of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *internalApp.Client) error {
				if err := loadNotes(ctx, c); err != nil {
					return err
				}
				res := c.Notes.ToggleFavorite(ctx, args[0])
				if err := resultErr(res.Result); err != nil {
					return err
				}
				if res.Skipped {
					return fmt.Errorf("note %s is not in your active notes", args[0])
				}
				renderNote(res.Note)
				return nil
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *internalApp.Client) error {
				if err := requireLogin(c); err != nil {
					return err
				}
				if err := resultErr(c.Notes.DeleteNote(ctx, args[0])); err != nil {
					return err
				}
				fmt.Printf("Deleted %s\n", args[0])
				return nil
			})
		},
	}

	notesCmd.AddCommand(listCmd, searchCmd, favoritesCmd, recentCmd, createCmd, updateCmd, favoriteCmd, deleteCmd)

	folderListCmd := &cobra.Command{
		Use:   "list",
		Short: "List folders by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *internalApp.Client) error {
				if err := requireLogin(c); err != nil {
					return err
				}
				res := c.Notes.FetchFolders(ctx)
				if err := resultErr(res.Result); err != nil {
					return err
				}
				t := newTable("ID", "Name", "Color", "Description")
				for _, f := range res.Folders {
					t.AppendRow([]any{f.ID, f.Name, f.Color, f.Description})
				}
				t.Render()
				return nil
			})
		},
	}

	var description, color string
	folderCreateCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *internalApp.Client) error {
				if err := requireLogin(c); err != nil {
					return err
				}
				res := c.Notes.CreateFolder(ctx, args[0], description, color)
				if err := resultErr(res.Result); err != nil {
					return err
				}
				fmt.Printf("Created folder %s (%s)\n", res.Folder.Name, res.Folder.ID)
				return nil
			})
		},
	}
	folderCreateCmd.Flags().StringVar(&description, "description", "", "folder description")
	folderCreateCmd.Flags().StringVar(&color, "color", "", "folder color, defaults to "+domain.DefaultFolderColor)

	foldersCmd.AddCommand(folderListCmd, folderCreateCmd)
	rootCmd.AddCommand(notesCmd, foldersCmd)
}
