package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewProductCmd создаёт группу команд для управления изделиями.
func NewProductCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage products",
	}

	cmd.AddCommand(
		newProductListCmd(clientFn, outputFn),
		newProductCreateCmd(clientFn, outputFn),
		newProductShowCmd(clientFn, outputFn),
		newProductDeleteCmd(clientFn, outputFn),
		newProductSnapshotsCmd(clientFn, outputFn),
		newProductSnapshotCmd(clientFn, outputFn),
	)

	return cmd
}

var productHeaders = []string{"ID", "DESIGN_NUMBER", "NAME", "RECIPES", "UPDATED"}

func productRow(p ProductResponse) []string {
	return []string{p.ID, p.DesignNumber, p.Name, strconv.Itoa(len(p.Recipes)), p.UpdatedAt}
}

func newProductListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all products",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			products, err := client.ListProducts()
			if err != nil {
				return err
			}

			rows := make([][]string, len(products))
			for i, p := range products {
				rows[i] = productRow(p)
			}

			out.Print(productHeaders, rows, products)
			return nil
		},
	}
}

func newProductCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var designNumber string
	var name string
	var recipes []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new product",
		Long: `Create a new product.

Recipes are passed as repeated --recipe flags in the form RECIPE_ID:QUANTITY:

  fabrica product create --design-number DN-100 --recipe 9f…:2 --recipe 1a…:1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			entries, err := parseRecipeEntries(recipes)
			if err != nil {
				return err
			}

			product, err := client.CreateProduct(CreateProductRequest{
				DesignNumber: designNumber,
				Name:         name,
				Recipes:      entries,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Product created: %s", product.ID))
			out.Print(productHeaders, [][]string{productRow(*product)}, product)
			return nil
		},
	}

	cmd.Flags().StringVar(&designNumber, "design-number", "", "Design number (required)")
	cmd.Flags().StringVar(&name, "name", "", "Product name")
	cmd.Flags().StringArrayVar(&recipes, "recipe", nil, "Recipe entry RECIPE_ID:QUANTITY (repeatable)")
	cmd.MarkFlagRequired("design-number")

	return cmd
}

func newProductShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show product details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			product, err := client.GetProduct(args[0])
			if err != nil {
				return err
			}

			out.Print(productHeaders, [][]string{productRow(*product)}, product)
			return nil
		},
	}
}

func newProductDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteProduct(args[0]); err != nil {
				return err
			}

			out.Success("Product deleted: " + args[0])
			return nil
		},
	}
}

func newProductSnapshotsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots ID",
		Short: "List snapshots of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			snaps, err := client.ListProductSnapshots(args[0])
			if err != nil {
				return err
			}

			headers := []string{"ID", "VERSION", "DESIGN_NUMBER", "RECIPES", "CREATED"}
			rows := make([][]string, len(snaps))
			for i, s := range snaps {
				rows[i] = []string{
					s.ID,
					strconv.Itoa(s.Version),
					s.DesignNumber,
					strconv.Itoa(len(s.Recipes)),
					s.CreatedAt,
				}
			}

			out.Print(headers, rows, snaps)
			return nil
		},
	}
}

func newProductSnapshotCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot ID",
		Short: "Get or create the current snapshot of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			snap, err := client.SnapshotProduct(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "VERSION", "DESIGN_NUMBER", "CREATED"},
				[][]string{{snap.ID, strconv.Itoa(snap.Version), snap.DesignNumber, snap.CreatedAt}},
				snap,
			)
			return nil
		},
	}
}

// parseRecipeEntries разбирает флаги вида RECIPE_ID:QUANTITY.
func parseRecipeEntries(specs []string) ([]RecipeEntryInput, error) {
	entries := make([]RecipeEntryInput, 0, len(specs))
	for _, spec := range specs {
		id, qty, err := parseIDQuantity(spec)
		if err != nil {
			return nil, fmt.Errorf("invalid --recipe %q: %w", spec, err)
		}
		entries = append(entries, RecipeEntryInput{RecipeID: id, Quantity: qty})
	}
	return entries, nil
}

// parseIDQuantity разбирает строку "ID:QUANTITY".
func parseIDQuantity(spec string) (string, int, error) {
	idx := strings.LastIndex(spec, ":")
	if idx <= 0 || idx == len(spec)-1 {
		return "", 0, fmt.Errorf("expected ID:QUANTITY")
	}

	qty, err := strconv.Atoi(spec[idx+1:])
	if err != nil {
		return "", 0, fmt.Errorf("quantity is not a number")
	}

	return spec[:idx], qty, nil
}
