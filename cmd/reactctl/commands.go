package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kube-rca/reactions/internal/client"
	"github.com/kube-rca/reactions/internal/config"
	"github.com/kube-rca/reactions/internal/model"
	"github.com/kube-rca/reactions/internal/reaction"
	"github.com/kube-rca/reactions/internal/service"
)

type rootOptions struct {
	cfg        config.Config
	api        string
	token      string
	targetType string
	targetID   string
	asJSON     bool
	optimistic bool
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{cfg: config.Load()}

	cmd := &cobra.Command{
		Use:          "reactctl",
		Short:        "Read and change reactions through the reactions API",
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.api, "api", opts.cfg.ReactionClient.BaseURL, "reactions API base URL")
	flags.StringVar(&opts.token, "token", opts.cfg.ReactionClient.Token, "bearer token of the acting user")
	flags.StringVar(&opts.targetType, "type", "", "target type")
	flags.StringVar(&opts.targetID, "id", "", "target ID")
	flags.BoolVar(&opts.asJSON, "json", false, "print the view as JSON")
	flags.BoolVar(&opts.optimistic, "optimistic", opts.cfg.Cache.Optimistic, "apply changes locally before the server confirms them")
	flags.DurationVar(&opts.timeout, "timeout", opts.cfg.Cache.FetchTimeout, "per-request timeout")

	cmd.AddCommand(
		newSummaryCmd(opts),
		newMineCmd(opts),
		newToggleCmd(opts),
		newEmojiCmd(opts),
		newRateCmd(opts),
		newTokenCmd(opts),
	)
	return cmd
}

// open builds a store over the remote API and resolves the target flags.
func (o *rootOptions) open() (*reaction.Store, reaction.TargetKey, error) {
	key := reaction.NewTargetKey(o.targetType, o.targetID)
	if err := key.Validate(); err != nil {
		return nil, key, fmt.Errorf("--type and --id are required: %w", err)
	}

	api := client.NewReactionClient(config.ReactionClientConfig{
		BaseURL: o.api,
		Timeout: o.timeout,
	}).WithToken(o.token)

	store := reaction.New(api,
		reaction.WithCapacity(o.cfg.Cache.Capacity),
		reaction.WithFetchTimeout(o.timeout),
		reaction.WithOptimistic(o.optimistic),
	)
	return store, key, nil
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show reaction counts and rating for a target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, key, err := opts.open()
			if err != nil {
				return err
			}
			if err := store.Load(cmd.Context(), key); err != nil {
				return err
			}
			return printView(cmd.OutOrStdout(), opts.asJSON, store.View(key))
		},
	}
}

func newMineCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "Show your own reactions to a target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.token == "" {
				return reaction.ErrUnauthenticated
			}
			store, key, err := opts.open()
			if err != nil {
				return err
			}
			if err := store.Ensure(cmd.Context(), key, reaction.QueryMine); err != nil {
				return err
			}
			return printView(cmd.OutOrStdout(), opts.asJSON, store.View(key))
		},
	}
}

func newToggleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "toggle <like|favorite|bookmark>",
		Short:     "Flip a like, favorite or bookmark",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"like", "favorite", "bookmark"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseKind(args[0])
			if err != nil {
				return err
			}
			return mutate(cmd, opts, func(ctx context.Context, store *reaction.Store, key reaction.TargetKey) error {
				return store.Toggle(ctx, key, kind)
			})
		},
	}
}

func newEmojiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "emoji <emoji>",
		Short: "Add or remove an emoji reaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd, opts, func(ctx context.Context, store *reaction.Store, key reaction.TargetKey) error {
				return store.ToggleEmoji(ctx, key, args[0])
			})
		},
	}
}

func newRateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <1-5>",
		Short: "Rate a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("rating must be a number: %w", err)
			}
			return mutate(cmd, opts, func(ctx context.Context, store *reaction.Store, key reaction.TargetKey) error {
				return store.Rate(ctx, key, value)
			})
		},
	}
}

// mutate loads the target, applies fn and prints the view once the
// follow-up refresh has landed. Without a token it fails before any request.
func mutate(cmd *cobra.Command, opts *rootOptions, fn func(context.Context, *reaction.Store, reaction.TargetKey) error) error {
	store, key, err := opts.open()
	if err != nil {
		return err
	}
	if opts.token == "" {
		return fmt.Errorf("%w: --token or REACTION_API_TOKEN is required", reaction.ErrUnauthenticated)
	}
	ctx := cmd.Context()
	if err := store.Load(ctx, key); err != nil {
		return err
	}
	if err := fn(ctx, store, key); err != nil {
		return err
	}
	store.Wait()
	return printView(cmd.OutOrStdout(), opts.asJSON, store.View(key))
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var userID int64
	var loginID string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token signed with JWT_SECRET (local testing)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := service.NewAuthService(opts.cfg.Auth)
			if err != nil {
				return err
			}
			tok, err := auth.IssueAccessToken(userID, loginID)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(tok)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok.AccessToken)
			return err
		},
	}
	cmd.Flags().Int64Var(&userID, "user-id", 0, "user ID for the token subject")
	cmd.Flags().StringVar(&loginID, "login", "", "login ID claim")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

func printView(w io.Writer, asJSON bool, view reaction.View) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	s := view.Summary
	fmt.Fprintf(w, "likes: %d  favorites: %d  bookmarks: %d\n", s.Likes, s.Favorites, s.Bookmarks)
	if len(s.Emojis) > 0 {
		emojis := make([]string, 0, len(s.Emojis))
		for e := range s.Emojis {
			emojis = append(emojis, e)
		}
		sort.Strings(emojis)
		parts := make([]string, 0, len(emojis))
		for _, e := range emojis {
			parts = append(parts, fmt.Sprintf("%s %d", e, s.Emojis[e]))
		}
		fmt.Fprintf(w, "emojis: %s\n", strings.Join(parts, ", "))
	}
	if s.RatingAvg != nil {
		fmt.Fprintf(w, "rating: %.2f (%d)\n", *s.RatingAvg, s.RatingCount)
	} else {
		fmt.Fprintln(w, "rating: - (0)")
	}

	m := view.Mine
	var mine []string
	if m.Like {
		mine = append(mine, "like")
	}
	if m.Favorite {
		mine = append(mine, "favorite")
	}
	if m.Bookmark {
		mine = append(mine, "bookmark")
	}
	mine = append(mine, m.Emojis...)
	if m.Rating != nil {
		mine = append(mine, fmt.Sprintf("rated %d", *m.Rating))
	}
	if len(mine) > 0 {
		fmt.Fprintf(w, "mine: %s\n", strings.Join(mine, ", "))
	}
	return nil
}
