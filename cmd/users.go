package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"barrierbet/domain/entities"
	"barrierbet/domain/utils"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)

	userCreateCmd.Flags().Bool("admin", false, "Grant the admin role")
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage player accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create USERNAME",
	Short: "Create an account with the starting balance",
	Long: `Create an account. The password is prompted for on a terminal, or read
from the first line of standard input otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runUserCreate,
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	isAdmin, _ := cmd.Flags().GetBool("admin")

	password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	var user *entities.User
	if isAdmin {
		user, err = a.auth.RegisterAdmin(cmd.Context(), args[0], password)
	} else {
		user, err = a.auth.Register(cmd.Context(), args[0], password)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s %s (%s) with balance %s\n", user.Role(), user.Username, user.ID, utils.FormatAmount(user.Balance))
	return nil
}

// readPassword prompts twice on a terminal and reads one line otherwise
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	file, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fd := int(file.Fd())
	fmt.Fprint(prompt, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(prompt, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
