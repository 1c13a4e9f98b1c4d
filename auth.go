package rsm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword. In tests it can be
// replaced with a stub to avoid touching the terminal.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

// Choice is the outcome of a yes/no prompt.
type Choice int

const (
	ChoiceYes Choice = iota
	ChoiceNo
)

// AuthFlow owns the interactive authentication lifecycle: first-run
// enrollment, login, logout, and key rotation. It is the only component
// that mutates the config on the user's behalf.
type AuthFlow struct {
	store  *ConfigStore
	client *Client
	in     *bufio.Reader
	out    io.Writer
}

// NewAuthFlow builds an auth flow reading prompts from in and writing them
// to out.
func NewAuthFlow(store *ConfigStore, client *Client, in io.Reader, out io.Writer) *AuthFlow {
	return &AuthFlow{store: store, client: client, in: bufio.NewReader(in), out: out}
}

// promptChoice shows a yes/no prompt and parses the answer
// case-insensitively. Empty input selects the default shown in brackets in
// the prompt; anything unrecognized falls back to the default too.
func (a *AuthFlow) promptChoice(prompt string, def Choice) (Choice, error) {
	if _, err := fmt.Fprint(a.out, prompt); err != nil {
		return def, ErrRsmFailed
	}
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return def, ErrRsmFailed
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "yes", "y":
		return ChoiceYes, nil
	case "no", "n":
		return ChoiceNo, nil
	default:
		return def, nil
	}
}

// promptLine shows a prompt and reads one line from stdin, trailing
// newline trimmed.
func (a *AuthFlow) promptLine(prompt string) (string, error) {
	if _, err := fmt.Fprint(a.out, prompt); err != nil {
		return "", ErrRsmFailed
	}
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", ErrRsmFailed
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptCredentials reads a username with echo and a password without.
func (a *AuthFlow) promptCredentials() (username, password string, err error) {
	username, err = a.promptLine("username: ")
	if err != nil {
		return "", "", err
	}
	if _, err := fmt.Fprint(a.out, "password: "); err != nil {
		return "", "", ErrRsmFailed
	}
	pw, err := readPassword()
	fmt.Fprintln(a.out)
	if err != nil {
		return "", "", ErrRsmFailed
	}
	return username, string(pw), nil
}

// ShowFirstRunPrompt walks a fresh install through enrollment. Users who
// already hold a key go straight to login; everyone else signs up first.
// On success the key and token are persisted and the first-run flag is
// cleared.
func (a *AuthFlow) ShowFirstRunPrompt(cfg *Config) error {
	fmt.Fprintf(a.out, "\x1b[34mWelcome to RsMember!\x1b[0m\n\n")

	choice, err := a.promptChoice("do you already have a key([yes]/no): ", ChoiceYes)
	if err != nil {
		return err
	}
	if choice == ChoiceNo {
		if err := a.signup(); err != nil {
			log.WithField("cause", err).Error("Signup failed")
			return err
		}
		fmt.Fprintln(a.out, "Log in:")
	}
	key, token, err := a.login()
	if err != nil {
		log.WithField("cause", err).Error("Login failed")
		return err
	}
	cfg.Key = &key
	cfg.Token = &token
	cfg.FirstRun = false
	if err := a.store.Save(cfg); err != nil {
		return err
	}
	log.Info("Successful enrollment")
	return nil
}

// login prompts for the account key and exchanges it for a session token.
// A server-reported error is promoted to ErrLoginFail because the caller's
// state transition depends on success.
func (a *AuthFlow) login() (key, token string, err error) {
	key, err = a.promptLine("Please input your key\n")
	if err != nil {
		return "", "", err
	}
	fmt.Fprintln(a.out)
	resp, token, err := a.client.Login(key)
	if err != nil {
		return "", "", err
	}
	if err := resp.Print(a.out); err != nil {
		return "", "", err
	}
	if resp.IsError() {
		return "", "", ErrLoginFail
	}
	fmt.Fprintf(a.out, "\x1b[34mWelcome to this machine!\x1b[0m\n\n")
	return strings.ReplaceAll(key, "\n", ""), token, nil
}

// signup creates a new account from interactively entered credentials.
func (a *AuthFlow) signup() error {
	fmt.Fprintln(a.out, "Create Account:")
	username, password, err := a.promptCredentials()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out)
	resp, err := a.client.Signup(username, password)
	if err != nil {
		return err
	}
	if resp.IsError() {
		_ = resp.Print(a.out)
		return ErrFirstRunFailed
	}
	fmt.Fprintln(a.out, "Account creation successful, you can now log in!")
	return resp.Print(a.out)
}

// Logout asks for confirmation and posts the choice to the server. Local
// state is wiped only after a confirmed logout that the server answered
// successfully; on any failure the config is left untouched.
func (a *AuthFlow) Logout(cfg *Config) error {
	choice, err := a.promptChoice("Do you really want to log out(yes, [no]): ", ChoiceNo)
	if err != nil {
		return err
	}
	confirmed := choice == ChoiceYes
	resp, err := a.client.Logout(confirmed)
	if err != nil {
		log.WithField("cause", err).Error("Error occurred while logging out")
		return err
	}
	log.Info("Successfully sent POST logout request and received response")
	if confirmed && !resp.IsError() {
		cfg.Token = nil
		cfg.Key = nil
		cfg.FirstRun = true
		if err := a.store.Save(cfg); err != nil {
			return err
		}
	}
	return resp.Print(a.out)
}

// NewKey rotates the account key. The rotation is two-phase: the config is
// first reset to the unenrolled state and persisted, then a login under
// the new key re-enrolls in the same invocation. A crash in between leaves
// the user unenrolled, which is recoverable by running any command.
func (a *AuthFlow) NewKey(cfg *Config) error {
	fmt.Fprintln(a.out, "Please input your credentials: ")
	username, password, err := a.promptCredentials()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out)
	resp, err := a.client.LostKey(username, password)
	if err != nil {
		return err
	}
	log.Info("Successfully sent POST lostkey request and received response")
	if err := resp.Print(a.out); err != nil {
		return err
	}
	if resp.IsError() {
		return ErrFailedToUpdateKey
	}
	fmt.Fprintf(a.out, "\x1b[34mNow login again\x1b[0m\n\n")

	// Phase one: back to unenrolled before attempting the new login.
	cfg.FirstRun = true
	cfg.Token = nil
	if err := a.store.Save(cfg); err != nil {
		return err
	}

	key, token, err := a.login()
	if err != nil {
		log.WithField("cause", err).Error("Login after key rotation failed")
		return err
	}
	cfg.Key = &key
	cfg.Token = &token
	cfg.FirstRun = false
	if err := a.store.Save(cfg); err != nil {
		return err
	}
	log.Info("Successful key change process")
	return nil
}
