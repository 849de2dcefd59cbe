// fvctl is a command-line client for a filevault server: upload files in
// either transfer mode, list stored files, download and delete them.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/lk2023060901/filevault/internal/client"
	pkgminio "github.com/lk2023060901/filevault/internal/pkg/minio"
)

var (
	serverURL string
	timeout   time.Duration
)

func main() {
	root := &cobra.Command{
		Use:           "fvctl",
		Short:         "Command-line client for a filevault server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "filevault server base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "request timeout")

	root.AddCommand(
		newUploadCmd(),
		newListCmd(),
		newDownloadCmd(),
		newDeleteCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newUploadCmd() *cobra.Command {
	var mode string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload one or more files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]client.File, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				files = append(files, client.File{
					Name: filepath.Base(path),
					Data: data,
				})
			}

			cfg := client.Config{
				BaseURL: serverURL,
				Mode:    client.Mode(mode),
			}
			if !quiet {
				cfg.OnProgress = func(p client.Progress) {
					fmt.Printf("\r%s: %.0f%%", p.FileName, p.Percent)
				}
			}

			u, err := client.NewUploader(cfg)
			if err != nil {
				return err
			}
			if err := u.SelectFiles(files); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := u.Upload(ctx); err != nil {
				if !quiet {
					fmt.Println()
				}
				return err
			}
			if !quiet {
				fmt.Println()
			}
			fmt.Printf("uploaded %d file(s) via %s mode\n", len(files), mode)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(client.ModeProxy), "transfer mode: proxy or presigned")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := client.NewAPI(serverURL, nil)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			files, err := api.List(ctx)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Println("no files stored")
				return nil
			}
			for _, f := range files {
				fmt.Printf("%s  %-30s  %8s  %s\n",
					f.ID, f.OriginalName, pkgminio.FormatBytes(f.Size),
					f.CreatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func newDownloadCmd() *cobra.Command {
	var output string
	var presigned bool

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download a file by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := client.NewAPI(serverURL, nil)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if presigned {
				url, err := api.PresignedDownloadURL(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Println(url)
				return nil
			}

			name, data, err := api.Download(ctx, args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = name
			}
			if output == "" {
				output = args[0]
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %s (%s)\n", output, pkgminio.FormatBytes(int64(len(data))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (defaults to the original file name)")
	cmd.Flags().BoolVar(&presigned, "presigned", false, "print a presigned download URL instead of fetching bytes")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a file by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := client.NewAPI(serverURL, nil)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := api.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("deleted", args[0])
			return nil
		},
	}
}
