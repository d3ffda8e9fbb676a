package cmd

import (
	"context"
	"fmt"

	internalApp "github.com/haierkeys/fast-note-client/internal/app"
	"github.com/haierkeys/fast-note-client/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Cross-account administration (admins only)",
}

// withAdmin 确认管理员权限并加载全部笔记与用户
func withAdmin(cmd *cobra.Command, fn func(ctx context.Context, c *internalApp.Client) error) error {
	return withClient(cmd, func(ctx context.Context, c *internalApp.Client) error {
		if err := requireLogin(c); err != nil {
			return err
		}
		if !c.Admin.InitializeAdminData(ctx) {
			if msg := c.Admin.Err(); msg != "" {
				return fmt.Errorf("admin check failed: %s", msg)
			}
			return store.ErrAdminRequired
		}
		return fn(ctx, c)
	})
}

func init() {
	var byUser string
	adminNotesCmd := &cobra.Command{
		Use:   "notes",
		Short: "List every user's notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd, func(ctx context.Context, c *internalApp.Client) error {
				notes := c.Admin.AllNotes()
				if byUser != "" {
					notes = c.Admin.NotesByUser(byUser)
				}
				t := newTable("ID", "Title", "Owner", "Favorite", "Archived", "Updated")
				for _, n := range notes {
					t.AppendRow(table.Row{n.NoteID, n.NoteTitle, n.UserEmail, n.NoteIsFavorite, n.NoteIsArchived, formatTime(n.NoteUpdatedAt)})
				}
				t.AppendFooter(table.Row{"", "", "", "", "Total", len(notes)})
				t.Render()
				return nil
			})
		},
	}
	adminNotesCmd.Flags().StringVar(&byUser, "user", "", "only notes owned by this email")

	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "List every user with their note count",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd, func(ctx context.Context, c *internalApp.Client) error {
				t := newTable("ID", "Email", "Admin", "Notes", "Created", "Last sign-in")
				for _, u := range c.Admin.AllUsers() {
					last := ""
					if u.LastSignInAt != nil {
						last = formatTime(*u.LastSignInAt)
					}
					t.AppendRow(table.Row{u.UserID, u.Email, u.IsAdmin, u.NoteCount, formatTime(u.CreatedAt), last})
				}
				t.AppendFooter(table.Row{"", "", len(c.Admin.AdminUsers()), c.Admin.TotalNotesCount(), "Total", c.Admin.TotalUsersCount()})
				t.Render()
				return nil
			})
		},
	}

	updateFlags := new(noteFlags)
	updateCmd := &cobra.Command{
		Use:   "update-note <id>",
		Short: "Update any user's note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := updateFlags.patch(cmd)
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to update")
			}
			return withAdmin(cmd, func(ctx context.Context, c *internalApp.Client) error {
				res := c.Admin.AdminUpdateNote(ctx, args[0], patch)
				if err := resultErr(res.Result); err != nil {
					return err
				}
				fmt.Printf("Updated %s\n", args[0])
				return nil
			})
		},
	}
	updateFlags.bind(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete-note <id>",
		Short: "Delete any user's note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd, func(ctx context.Context, c *internalApp.Client) error {
				if err := resultErr(c.Admin.AdminDeleteNote(ctx, args[0])); err != nil {
					return err
				}
				fmt.Printf("Deleted %s\n", args[0])
				return nil
			})
		},
	}

	grantCmd := &cobra.Command{
		Use:   "grant <user-id>",
		Short: "Grant administrator rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd, func(ctx context.Context, c *internalApp.Client) error {
				return setAdmin(ctx, c, args[0], true)
			})
		},
	}

	revokeCmd := &cobra.Command{
		Use:   "revoke <user-id>",
		Short: "Revoke administrator rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd, func(ctx context.Context, c *internalApp.Client) error {
				return setAdmin(ctx, c, args[0], false)
			})
		},
	}

	adminCmd.AddCommand(adminNotesCmd, usersCmd, updateCmd, deleteCmd, grantCmd, revokeCmd)
	rootCmd.AddCommand(adminCmd)
}

func setAdmin(ctx context.Context, c *internalApp.Client, userID string, isAdmin bool) error {
	var res store.Result
	if isAdmin {
		res = c.Admin.MakeUserAdmin(ctx, userID)
	} else {
		res = c.Admin.RemoveAdminPrivileges(ctx, userID)
	}
	if err := resultErr(res); err != nil {
		return err
	}
	for _, u := range c.Admin.AllUsers() {
		if u.UserID == userID {
			fmt.Printf("%s is_admin=%v\n", u.Email, u.IsAdmin)
			return nil
		}
	}
	fmt.Printf("%s is_admin=%v\n", userID, isAdmin)
	return nil
}

