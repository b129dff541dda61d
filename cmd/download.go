package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vsixget/internal/config"
	"vsixget/internal/downloader"
	"vsixget/internal/fetcher"
	"vsixget/internal/marketplace"
	"vsixget/internal/progress"
	"vsixget/internal/prompt"
)

var assumeYes bool

var downloadCmd = &cobra.Command{
	Use:   "download [EXTENSION_ID...]",
	Short: "Downloads extensions from the marketplace",
	Long: `Resolves each extension to its latest version and downloads the .vsix
package into the download directory. Without arguments the extensions listed
under extensions.items in the config file are used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runDownload(cmd, args)
	},
}

func init() {
	downloadCmd.Flags().StringP("marketplace", "m", "", "marketplace to query: microsoft or open-vsx")
	downloadCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "download without asking for confirmation")
	viper.BindPFlag("marketplace.type", downloadCmd.Flags().Lookup("marketplace"))
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	config := config.GetConfig()

	identifiers := args
	if len(identifiers) == 0 {
		identifiers = config.Extensions
	}

	factory := marketplace.NewFactory(marketplace.Options{
		QueryURL:        config.QueryURL,
		DownloadBaseURL: config.DownloadBaseURL,
		OpenVSXURL:      config.OpenVSXURL,
		Timeout:         config.QueryTimeout,
		UserAgent:       config.UserAgent,
	})
	provider, err := factory.CreateByType(marketplace.MarketplaceType(config.Marketplace))
	if err != nil {
		return err
	}

	dl := downloader.New(downloader.Options{
		Directory: config.DownloadDir,
		Timeout:   config.DownloadTimeout,
		ChunkSize: config.ChunkSize,
		UserAgent: config.UserAgent,
	})

	out := cmd.OutOrStdout()
	var confirmer prompt.Confirmer = prompt.NewLineConfirmer(cmd.InOrStdin(), out)
	if assumeYes {
		confirmer = prompt.AlwaysConfirm{}
	}

	f := fetcher.New(provider, dl, confirmer, out,
		fetcher.WithProgress(func(label string) fetcher.Progress {
			return progress.NewBar(out, label)
		}),
	)

	fmt.Fprintf(out, "Resolving %d extension(s) from %s\n", len(identifiers), provider.GetName())
	outcomes, err := f.Run(cmd.Context(), identifiers)
	fmt.Fprintf(out, "\nDone: %s\n", fetcher.Summarize(outcomes))
	return err
}
