// cmd/vacancyctl/listing.go
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"vacancy-workers/internal/vacancy/marketing"
)

var vacancyListingCmd = &cobra.Command{
	Use:   "listing",
	Short: "Draft listing copy into Google Drive and preview sample prospects",
	Long: `Reads a listing file with "listing" and "sample_applicants" keys, drafts the
marketing document and scores each sample applicant. Without
--drive-credentials the draft is kept in memory and no photos are found.`,
	RunE: runVacancyListing,
}

var (
	listingFile      string
	driveCredentials string
	listingJSON      bool
)

func init() {
	vacancyListingCmd.Flags().StringVarP(&listingFile, "file", "f", "", "Listing file (.json, .yaml or .yml)")
	vacancyListingCmd.Flags().StringVar(&driveCredentials, "drive-credentials", "", "Google service account credentials file")
	vacancyListingCmd.Flags().BoolVar(&listingJSON, "json", false, "Print the plan as JSON")
	_ = vacancyListingCmd.MarkFlagRequired("file")
	vacancyCmd.AddCommand(vacancyListingCmd)
}

func runVacancyListing(cmd *cobra.Command, args []string) error {
	var input marketing.Input
	if err := decodeFile(listingFile, "listing", &input); err != nil {
		return err
	}

	ctx := context.Background()
	drive, err := newDriveGateway(ctx)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	publisher := marketing.NewPublisher(drive, cfg.Evaluation, newLogger(cfg))

	plan, err := publisher.PrepareListing(ctx, input)
	if err != nil {
		return err
	}

	if listingJSON {
		return writeJSON(cmd.OutOrStdout(), plan)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), renderPlan(input.Listing, plan))
	return err
}

func newDriveGateway(ctx context.Context) (marketing.DriveGateway, error) {
	if driveCredentials == "" {
		return marketing.NewMemoryDrive(), nil
	}
	return marketing.NewGoogleDriveClient(ctx, option.WithCredentialsFile(driveCredentials))
}
