package cmd

import (
	"context"
	"fmt"

	"github.com/openvisage/facegate/internal/config"
	"github.com/openvisage/facegate/internal/face"
	"github.com/openvisage/facegate/internal/store"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that every enrollment has a usable reference image",
	Long: `Walk all enrolled users and run the face extractor on each stored
reference image. Users whose image cannot be decoded or yields no
detectable face are silently skipped during recognition; this command
makes them visible so the enrollment can be redone.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	users := store.NewUsers(db)
	extractor := face.NewClient(cfg.Extractor.URL)

	all, err := users.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Println("No enrolled users.")
		return nil
	}

	bar := progressbar.Default(int64(len(all)), "checking enrollments")

	type problem struct {
		user   store.User
		reason string
	}
	var problems []problem

	for _, usr := range all {
		imageData, err := face.DecodePayload(usr.Image)
		if err != nil {
			problems = append(problems, problem{usr, "reference image is not valid base64"})
			_ = bar.Add(1)
			continue
		}
		if err := face.ValidateImage(imageData); err != nil {
			problems = append(problems, problem{usr, "reference image is not a decodable raster image"})
			_ = bar.Add(1)
			continue
		}
		encodings, err := extractor.DetectEncodings(ctx, imageData)
		if err != nil {
			problems = append(problems, problem{usr, fmt.Sprintf("extractor failed: %v", err)})
			_ = bar.Add(1)
			continue
		}
		if len(encodings) == 0 {
			problems = append(problems, problem{usr, "no face detected in reference image"})
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	fmt.Printf("\nChecked %d enrollments, %d unusable\n", len(all), len(problems))
	for _, p := range problems {
		fmt.Printf("  #%d %s: %s\n", p.user.ID, p.user.Name, p.reason)
	}
	return nil
}
