/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "humantone",
	Short: "AI text humaniser",
	Long: `Transform AI-generated text into authentic human writing using a
quality-gated rewrite pipeline: analyse the text for AI patterns, retrieve
human-written reference examples, then rewrite and evaluate in a loop until
the quality threshold is reached.

Supported modes: sales (marketing copy), journalist (editorial content)

Use "humantone humanise --help" for rewrite options.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./humantone.yaml, $HOME/.humantone/humantone.yaml)")
}
