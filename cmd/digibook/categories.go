package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/digibook/digibook/internal/cli"
	"github.com/digibook/digibook/internal/model"
	"github.com/digibook/digibook/internal/validation"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expense categories",
		Long:  `List, add, update, and delete expense categories.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			categories, err := app.categories.Get(ctx, app.store.GetCategories)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.BoldStyle.Render("ID"),
				cli.BoldStyle.Render("Name"),
				cli.BoldStyle.Render("Color"),
				cli.BoldStyle.Render("Icon"),
				cli.BoldStyle.Render("Default"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4), strings.Repeat("-", 20), strings.Repeat("-", 8),
				strings.Repeat("-", 12), strings.Repeat("-", 7))

			for i := range categories {
				c := &categories[i]
				marker := ""
				if c.IsDefault {
					marker = cli.SuccessIcon
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Color, c.Icon, marker)
			}

			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var (
		color string
		icon  string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			existing, err := app.store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			res := validation.ValidateCategory(model.Category{
				Name:  args[0],
				Color: color,
				Icon:  icon,
			}, existing)
			if !res.OK {
				return fmt.Errorf("invalid category: %s", strings.Join(issueMessages(res.Errors), "; "))
			}

			category := res.Sanitized
			if err := app.store.CreateCategory(ctx, &category); err != nil {
				return err
			}
			app.categories.Invalidate()

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created category %q (id %d)", category.Name, category.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "hex color, e.g. #4ECDC4")
	cmd.Flags().StringVar(&icon, "icon", "", "icon name")

	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var (
		name  string
		color string
		icon  string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "category")
			if err != nil {
				return err
			}

			app, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			existing, err := app.store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			var category *model.Category
			for i := range existing {
				if existing[i].ID == id {
					category = &existing[i]
					break
				}
			}
			if category == nil {
				return fmt.Errorf("category %d not found", id)
			}

			if cmd.Flags().Changed("name") {
				category.Name = name
			}
			if cmd.Flags().Changed("color") {
				category.Color = color
			}
			if cmd.Flags().Changed("icon") {
				category.Icon = icon
			}

			res := validation.ValidateCategory(*category, existing)
			if !res.OK {
				return fmt.Errorf("invalid category: %s", strings.Join(issueMessages(res.Errors), "; "))
			}

			updated := res.Sanitized
			if err := app.store.UpdateCategory(ctx, &updated); err != nil {
				return err
			}
			app.categories.Invalidate()

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated category %q", updated.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&color, "color", "", "new hex color")
	cmd.Flags().StringVar(&icon, "icon", "", "new icon")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long:  `Delete a category. Default categories cannot be deleted.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "category")
			if err != nil {
				return err
			}

			app, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.store.DeleteCategory(ctx, id); err != nil {
				return err
			}
			app.categories.Invalidate()

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted category %d", id)))
			return nil
		},
	}
}
