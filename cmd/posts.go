// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"notewire/cli/internal/api"
	"notewire/cli/internal/posts"
	"notewire/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	verbosePosts bool
	postsRefresh bool
	postTitle    string
	postBody     string
	postsYes     bool
)

// postsCmd groups the posts subcommands. Reads are served through the
// in-process cache; create and delete invalidate it so the next read is
// fresh.
var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Work with the posts in your workspace",
	Long: `The posts command reads and writes posts in your Notewire workspace.
Listing and showing are served from the in-process cache when fresh;
creating or deleting a post invalidates the cached posts so the next
read reflects the change.`,
}

var postsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List posts",

	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbose(verbosePosts)

		app, err := newApp()
		if err != nil {
			return presentStartupError(err)
		}
		if !app.sessions.IsAuthenticated() {
			fmt.Println("🔒 You're not signed in yet!")
			fmt.Println("   Run 'notewire login' to get started.")
			return nil
		}

		stop := startInlineSpinner(os.Stdout, "Fetching posts", spinnerFrames, 120*time.Millisecond)
		var list []posts.Post
		if postsRefresh {
			list, err = app.posts.Refresh(cmd.Context())
		} else {
			list, err = app.posts.List(cmd.Context())
		}
		stop()
		if err != nil {
			return presentAuthError(err, "fetching posts")
		}

		if len(list) == 0 {
			fmt.Println("No posts yet. Create one with 'notewire posts create'.")
			return nil
		}

		pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint("Posts"))
		for _, p := range list {
			id := pterm.NewStyle(pterm.FgGreen).Sprint(p.ID)
			pterm.Printf("  %s  %s  %s\n", id, p.CreatedAt.Format("2006-01-02"), p.Title)
		}
		pterm.Println()
		pterm.Printf("%d post(s). Use 'notewire posts show <id>' to read one.\n", len(list))
		return nil
	},
}

var postsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one post",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbose(verbosePosts)

		app, err := newApp()
		if err != nil {
			return presentStartupError(err)
		}
		if !app.sessions.IsAuthenticated() {
			fmt.Println("🔒 You're not signed in yet!")
			fmt.Println("   Run 'notewire login' to get started.")
			return nil
		}

		p, err := app.posts.Get(cmd.Context(), args[0])
		if err != nil {
			var apiErr *api.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
				fmt.Printf("❌ No post with id %s\n", args[0])
				return err
			}
			return presentAuthError(err, "fetching the post")
		}

		title := pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(p.Title)
		details := fmt.Sprintf("id: %s\nauthor: %s\ncreated: %s\n\n%s",
			p.ID, p.AuthorID, p.CreatedAt.Format(time.RFC1123), p.Body)
		pterm.Println(pterm.DefaultBox.WithTitle(title).WithPadding(1).Sprint(details))
		return nil
	},
}

var postsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a new post",

	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbose(verbosePosts)

		app, err := newApp()
		if err != nil {
			return presentStartupError(err)
		}
		if !app.sessions.IsAuthenticated() {
			fmt.Println("🔒 You're not signed in yet!")
			fmt.Println("   Run 'notewire login' to get started.")
			return nil
		}

		title := strings.TrimSpace(postTitle)
		if title == "" {
			title, err = terminal.ReadLine("Title: ")
			if err != nil {
				return err
			}
		}
		if title == "" {
			return errors.New("a title is required")
		}

		body := postBody
		if body == "" {
			body, err = terminal.ReadLine("Body (optional): ")
			if err != nil {
				return err
			}
		}

		stop := startInlineSpinner(os.Stdout, "Publishing", spinnerFrames, 120*time.Millisecond)
		p, err := app.posts.Create(cmd.Context(), posts.CreateRequest{Title: title, Body: body})
		stop()
		if err != nil {
			return presentAuthError(err, "publishing the post")
		}

		fmt.Printf("✅ Post created: %s\n", p.ID)
		return nil
	},
}

var postsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a post",

	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbose(verbosePosts)

		app, err := newApp()
		if err != nil {
			return presentStartupError(err)
		}
		if !app.sessions.IsAuthenticated() {
			fmt.Println("🔒 You're not signed in yet!")
			fmt.Println("   Run 'notewire login' to get started.")
			return nil
		}

		id := args[0]
		if !postsYes {
			ans, err := terminal.ReadLine(fmt.Sprintf("Delete post %s? Type yes to confirm: ", id))
			if err != nil {
				return err
			}
			if !strings.EqualFold(ans, "yes") && !strings.EqualFold(ans, "y") {
				fmt.Println("Aborted.")
				return nil
			}
		}

		if err := app.posts.Delete(cmd.Context(), id); err != nil {
			var apiErr *api.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
				fmt.Printf("❌ No post with id %s\n", id)
				return err
			}
			return presentAuthError(err, "deleting the post")
		}

		fmt.Printf("✅ Post %s deleted\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(postsCmd)
	postsCmd.AddCommand(postsListCmd, postsShowCmd, postsCreateCmd, postsDeleteCmd)

	postsCmd.PersistentFlags().BoolVarP(&verbosePosts, "verbose", "v", false, "Enable verbose debug output")
	postsListCmd.Flags().BoolVar(&postsRefresh, "refresh", false, "Skip the cache and fetch fresh data")
	postsCreateCmd.Flags().StringVar(&postTitle, "title", "", "Post title (prompted when omitted)")
	postsCreateCmd.Flags().StringVar(&postBody, "body", "", "Post body")
	postsDeleteCmd.Flags().BoolVar(&postsYes, "yes", false, "Skip the confirmation prompt")
}
