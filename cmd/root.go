package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stylemirror",
	Short: "An AI personal stylist for your webcam",
	Long: `StyleMirror turns a captured or uploaded photo into a styling session:
generate new hairstyles, outfits, backgrounds and color palettes with a
hosted image model, and get a structured critique of the current look.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
