package main

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/beacon-tools/beacon/internal/cli/config"
)

var initYes bool

func init() {
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Accept defaults without prompting")
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a beacon.yml in the current project",
	Long:  "Interactively scaffold a beacon.yml configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.InProject() {
			return fmt.Errorf("beacon.yml already exists")
		}

		projectName := "app"
		syntax := "tag"
		changing := true

		if !initYes {
			questions := []*survey.Question{
				{
					Name:     "project",
					Prompt:   &survey.Input{Message: "Project name:", Default: projectName},
					Validate: survey.Required,
				},
				{
					Name: "syntax",
					Prompt: &survey.Select{
						Message: "Candidate syntax:",
						Options: []string{"tag", "legacy"},
						Default: "tag",
						Help:    "tag accepts both struct tags and //beacon:property directives; legacy accepts directives only",
					},
				},
				{
					Name: "changing",
					Prompt: &survey.Confirm{
						Message: "Emit pre-change (changing) notifications?",
						Default: true,
					},
				},
			}
			answers := struct {
				Project  string
				Syntax   string
				Changing bool
			}{}
			if err := survey.Ask(questions, &answers); err != nil {
				return err
			}
			projectName = answers.Project
			syntax = answers.Syntax
			changing = answers.Changing
		}

		content := fmt.Sprintf(`project_name: %s

source:
  packages:
    - ./...

generate:
  syntax: %s
  changing: %t

cache:
  enabled: true
  dir: .beacon-cache
`, projectName, syntax, changing)

		if err := os.WriteFile("beacon.yml", []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write beacon.yml: %w", err)
		}
		fmt.Println("Created beacon.yml")
		return nil
	},
}
