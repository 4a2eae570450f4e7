package main

import (
	"github.com/spf13/cobra"

	"github.com/budgetbook/budgetbook/internal/api"
)

func newCategoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "List and manage categories",
	}

	var listType string
	list := &cobra.Command{
		Use:   "list",
		Short: "List categories, optionally of one type",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			var typ api.TransactionType
			if listType != "" {
				t, err := api.ParseTransactionType(listType)
				if err != nil {
					return err
				}
				typ = t
			}
			cats, err := a.categories.List(cmd.Context(), typ)
			if err != nil {
				return err
			}
			a.printCategories(cats)
			return nil
		},
	}
	list.Flags().StringVar(&listType, "type", "", "INCOME or EXPENSE")

	var name, typ, icon string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			t, err := api.ParseTransactionType(typ)
			if err != nil {
				return err
			}
			c, err := a.categories.Create(cmd.Context(), api.CategoryCreateRequest{Name: name, Type: t, Icon: icon})
			if err != nil {
				return err
			}
			a.printf("created category %d (%s %s)\n", c.ID, c.Type, c.Name)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "category name")
	add.Flags().StringVar(&typ, "type", "", "INCOME or EXPENSE")
	add.Flags().StringVar(&icon, "icon", "", "icon")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("type")

	edit := &cobra.Command{
		Use:   "edit ID",
		Short: "Rename or re-icon a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			catID, err := parseID(args[0])
			if err != nil {
				return err
			}
			var req api.CategoryUpdateRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("icon") {
				req.Icon = &icon
			}
			c, err := a.categories.Update(cmd.Context(), catID, req)
			if err != nil {
				return err
			}
			a.printf("updated category %d (%s)\n", c.ID, c.Name)
			return nil
		},
	}
	edit.Flags().StringVar(&name, "name", "", "new name")
	edit.Flags().StringVar(&icon, "icon", "", "new icon")

	rm := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			catID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.categories.Delete(cmd.Context(), catID); err != nil {
				return err
			}
			a.printf("deleted category %d\n", catID)
			return nil
		},
	}

	cmd.AddCommand(list, add, edit, rm)
	return cmd
}
