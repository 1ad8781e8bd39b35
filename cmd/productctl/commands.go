package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	productv1 "github.com/abgdnv/inventory/pkg/api/product/v1"
	"github.com/abgdnv/inventory/pkg/client/product"
	"github.com/abgdnv/inventory/pkg/config"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

// newRootCmd builds the command tree. Dial options are appended to every client connection.
func newRootCmd(dialOpts ...grpc.DialOption) *cobra.Command {
	cfg := config.DefaultProductClientConfig()

	rootCmd := &cobra.Command{
		Use:           "productctl",
		Short:         "productctl manages the product catalog over gRPC",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfg.Addr, "addr", cfg.Addr, "product service gRPC address")
	rootCmd.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout of a single call attempt")

	// withClient opens a connection for the duration of one command.
	withClient := func(cmd *cobra.Command, fn func(ctx context.Context, c *product.Client) (any, error)) error {
		c, err := product.New(cfg, dialOpts...)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		out, err := fn(cmd.Context(), c)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	rootCmd.AddCommand(
		newGetCmd(withClient),
		newListCmd(withClient),
		newCreateCmd(withClient),
		newDeleteCmd(withClient),
	)
	return rootCmd
}

type clientRunner func(cmd *cobra.Command, fn func(ctx context.Context, c *product.Client) (any, error)) error

// productctl get <id>
func newGetCmd(run clientRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, c *product.Client) (any, error) {
				return c.Get(ctx, id)
			})
		},
	}
}

// productctl list [--skip N] [--limit N] [--in-stock=bool]
func newListCmd(run clientRunner) *cobra.Command {
	var skip, limit int
	var inStock bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products page by page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req productv1.ListRequest
			if cmd.Flags().Changed("skip") {
				req.Skip = &skip
			}
			if cmd.Flags().Changed("limit") {
				req.Limit = &limit
			}
			if cmd.Flags().Changed("in-stock") {
				req.InStock = &inStock
			}
			return run(cmd, func(ctx context.Context, c *product.Client) (any, error) {
				return c.List(ctx, req)
			})
		},
	}
	cmd.Flags().IntVar(&skip, "skip", 0, "number of products to skip")
	cmd.Flags().IntVar(&limit, "limit", 10, "page size (1..100)")
	cmd.Flags().BoolVar(&inStock, "in-stock", true, "only list products with this stock status")
	return cmd
}

// productctl create --name N --price P [--description D] [--in-stock=bool]
func newCreateCmd(run clientRunner) *cobra.Command {
	var name, description string
	var price float64
	var inStock bool
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := productv1.CreateRequest{Name: name, Price: &price}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("in-stock") {
				req.InStock = &inStock
			}
			return run(cmd, func(ctx context.Context, c *product.Client) (any, error) {
				return c.Create(ctx, req)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "product name (1..100 characters)")
	cmd.Flags().Float64Var(&price, "price", 0, "unit price, greater than 0")
	cmd.Flags().StringVar(&description, "description", "", "optional description")
	cmd.Flags().BoolVar(&inStock, "in-stock", true, "stock status")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

// productctl delete <id>
func newDeleteCmd(run clientRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, c *product.Client) (any, error) {
				if err := c.Delete(ctx, id); err != nil {
					return nil, err
				}
				return map[string]string{"message": fmt.Sprintf("Product %d deleted successfully", id)}, nil
			})
		},
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q", arg)
	}
	return id, nil
}
