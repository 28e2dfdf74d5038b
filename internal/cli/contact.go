package cli

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/borghese/vitrine/internal/contact"
)

func newContactCmd() *cobra.Command {
	var p contact.Payload

	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a contact message",
		Long:  "Validate and relay a contact message the way the site's contact form does. The message is recorded in the local inbox.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContact(cmd, p)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&p.Name, "name", "", "sender name")
	fl.StringVar(&p.Email, "email", "", "sender email")
	fl.StringVar(&p.Phone, "phone", "", "sender phone, e.g. (48) 99999-1234")
	fl.StringVar(&p.Subject, "subject", "", "subject")
	fl.StringVar(&p.Message, "message", "", "message body")
	fl.BoolVar(&p.Consent, "accept-privacy", false, "accept the privacy policy")

	return cmd
}

func runContact(cmd *cobra.Command, p contact.Payload) error {
	if err := p.Validate(); err != nil {
		var ferr *contact.FieldError
		if errors.As(err, &ferr) && !isJSON() {
			keys := make([]string, 0, len(ferr.Fields))
			for k := range ferr.Fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				printf(cmd.ErrOrStderr(), "  %s: %s\n", k, ferr.Fields[k])
			}
		}
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	p.SentAt = time.Now()
	out := a.loader.SubmitContact(cmd.Context(), p)

	if isJSON() {
		if err := printJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	} else {
		printf(cmd.OutOrStdout(), "%s\n", out.Message)
	}
	if !out.Success {
		return fmt.Errorf("contact message not delivered")
	}
	return nil
}
