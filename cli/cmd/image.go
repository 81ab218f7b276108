package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crmarques/storectl/notify"
	"github.com/crmarques/storectl/uploader"
)

func newImageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "image",
		GroupID: groupUserFacing,
		Short:   "Manage the image gallery of a product",
	}

	cmd.AddCommand(newImageListCommand())
	cmd.AddCommand(newImageUploadCommand())
	cmd.AddCommand(newImageReorderCommand())
	cmd.AddCommand(newImageDeleteCommand())

	return cmd
}

func newImageQueue(cmd *cobra.Command, shopID string, productID string) (*uploader.Queue, *notify.Bus, error) {
	current, err := loadCurrentContext(cmd)
	if err != nil {
		return nil, nil, err
	}

	bus := newNoticeBus()
	queue := uploader.NewQueue(current.Client,
		uploader.WithNotifier(bus),
		uploader.WithTarget(shopID, productID),
	)
	return queue, bus, nil
}

func requireImageTarget(cmd *cobra.Command, shopID string, productID string) error {
	if shopID == "" {
		return usageError(cmd, "--shop is required")
	}
	if productID == "" {
		return usageError(cmd, "--product is required")
	}
	return nil
}

func newImageListCommand() *cobra.Command {
	var shopID, productID string

	cmd := &cobra.Command{
		Use:   "list --shop <shop-id> --product <product-id>",
		Short: "List the images of a product in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireImageTarget(cmd, shopID, productID); err != nil {
				return err
			}
			queue, bus, err := newImageQueue(cmd, shopID, productID)
			if err != nil {
				return err
			}
			defer flushNotices(cmd, bus)

			if err := queue.Load(cmd.Context()); err != nil {
				return err
			}
			return printYAML(cmd, queue.Images())
		},
	}

	cmd.Flags().StringVar(&shopID, "shop", "", "Shop the product belongs to")
	cmd.Flags().StringVar(&productID, "product", "", "Product whose images to list")
	return cmd
}

func newImageUploadCommand() *cobra.Command {
	var shopID, productID, altText string

	cmd := &cobra.Command{
		Use:   "upload --shop <shop-id> --product <product-id> <file> [file...]",
		Short: "Upload image files to a product",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireImageTarget(cmd, shopID, productID); err != nil {
				return err
			}
			queue, bus, err := newImageQueue(cmd, shopID, productID)
			if err != nil {
				return err
			}
			defer flushNotices(cmd, bus)

			trace := debugf(cmd, debugGroupUpload)
			for _, path := range args {
				file, err := os.Open(path)
				if err != nil {
					return err
				}
				_, addErr := queue.Add(filepath.Base(path), file, altText)
				file.Close()
				if addErr != nil {
					return addErr
				}
				if trace != nil {
					trace("queued %s", path)
				}
			}

			if err := queue.Upload(cmd.Context()); err != nil {
				return handledError{msg: err.Error()}
			}

			for _, item := range queue.Pending() {
				if item.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s: %v\n", item.Name, item.Err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&shopID, "shop", "", "Shop the product belongs to")
	cmd.Flags().StringVar(&productID, "product", "", "Product to attach the images to")
	cmd.Flags().StringVar(&altText, "alt", "", "Alt text stored with each uploaded image")
	return cmd
}

func newImageReorderCommand() *cobra.Command {
	var shopID, productID string
	var moves []string

	cmd := &cobra.Command{
		Use:   "reorder --shop <shop-id> --product <product-id> --move from:to [--move ...]",
		Short: "Move images within the gallery and save the new order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireImageTarget(cmd, shopID, productID); err != nil {
				return err
			}
			if len(moves) == 0 {
				return usageError(cmd, "at least one --move from:to is required")
			}

			queue, bus, err := newImageQueue(cmd, shopID, productID)
			if err != nil {
				return err
			}
			defer flushNotices(cmd, bus)

			if err := queue.Load(cmd.Context()); err != nil {
				return err
			}
			for _, move := range moves {
				from, to, err := parseMove(move)
				if err != nil {
					return usageError(cmd, err.Error())
				}
				if err := queue.Move(from, to); err != nil {
					return err
				}
			}
			if err := queue.PersistOrder(cmd.Context()); err != nil {
				return handledError{msg: err.Error()}
			}
			return printYAML(cmd, queue.Images())
		},
	}

	cmd.Flags().StringVar(&shopID, "shop", "", "Shop the product belongs to")
	cmd.Flags().StringVar(&productID, "product", "", "Product whose gallery to reorder")
	cmd.Flags().StringArrayVar(&moves, "move", nil, "Move, as from:to positions (repeatable, applied in order)")
	return cmd
}

func newImageDeleteCommand() *cobra.Command {
	var shopID, productID string
	var skipPrompt bool

	cmd := &cobra.Command{
		Use:   "delete <image-id> --shop <shop-id> --product <product-id>",
		Short: "Delete an image from a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireImageTarget(cmd, shopID, productID); err != nil {
				return err
			}
			message := fmt.Sprintf("Delete image %s?", args[0])
			if err := confirmAction(cmd, skipPrompt, message); err != nil {
				return err
			}

			queue, bus, err := newImageQueue(cmd, shopID, productID)
			if err != nil {
				return err
			}
			defer flushNotices(cmd, bus)

			if err := queue.DeleteImage(cmd.Context(), args[0]); err != nil {
				return handledError{msg: err.Error()}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&shopID, "shop", "", "Shop the product belongs to")
	cmd.Flags().StringVar(&productID, "product", "", "Product the image belongs to")
	cmd.Flags().BoolVarP(&skipPrompt, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func parseMove(raw string) (int, int, error) {
	fromRaw, toRaw, found := strings.Cut(raw, ":")
	if !found {
		return 0, 0, fmt.Errorf("--move %q must look like from:to", raw)
	}
	from, err := strconv.Atoi(strings.TrimSpace(fromRaw))
	if err != nil {
		return 0, 0, fmt.Errorf("--move %q must look like from:to", raw)
	}
	to, err := strconv.Atoi(strings.TrimSpace(toRaw))
	if err != nil {
		return 0, 0, fmt.Errorf("--move %q must look like from:to", raw)
	}
	return from, to, nil
}
