package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rbarroso/acolyte-scheduler/internal/auth"
)

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Hash an admin password for the ADMIN_PASSWORD_HASH setting",
		Long: `Prompts for a password and prints its Argon2id hash. Put the hash in
the adminPasswordHash config field or the ADMIN_PASSWORD_HASH environment
variable to protect the admin routes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword("Enter password:   ")
			if err != nil {
				return err
			}
			confirm, err := readPassword("Confirm password: ")
			if err != nil {
				return err
			}

			if password == "" {
				return fmt.Errorf("password cannot be empty")
			}
			if password != confirm {
				return fmt.Errorf("passwords do not match")
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			fmt.Println(hash)
			return nil
		},
	}
}

// readPassword reads a line without echoing when stdin is a terminal.
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(password), nil
	}

	var password string
	if _, err := fmt.Fscanln(os.Stdin, &password); err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return password, nil
}
