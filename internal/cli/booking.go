package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/cinema-session-booking/internal/mirror"
)

func (a *app) bookingCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "booking", Short: "Manage bookings"}
	cmd.AddCommand(a.bookingAddCommand(), a.bookingEditCommand(), a.bookingDeleteCommand())
	return cmd
}

func (a *app) bookingAddCommand() *cobra.Command {
	var tag, name string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Book a seat in a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			if name == "" {
				err = s.mirror.OnAddBooking(cmd.Context(), tag, a.prompter(cmd))
			} else {
				err = s.mirror.AddBooking(cmd.Context(), tag, name)
			}
			if err != nil {
				return err
			}
			return s.show(cmd, tag)
		},
	}
	cmd.Flags().StringVar(&tag, "session", "", "session tag, e.g. MS0")
	cmd.Flags().StringVar(&name, "name", "", "surname to book under (prompted when empty)")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}

func (a *app) bookingEditCommand() *cobra.Command {
	var id, name string
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Rename a booking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			if name == "" {
				err = s.mirror.OnEditBooking(cmd.Context(), id, a.prompter(cmd))
			} else {
				err = s.mirror.EditBooking(cmd.Context(), id, name)
			}
			if err != nil {
				return err
			}
			return s.showBooking(cmd, id)
		},
	}
	cmd.Flags().StringVar(&id, "booking", "", "booking id, e.g. MS0-T1")
	cmd.Flags().StringVar(&name, "name", "", "new surname (prompted when empty)")
	_ = cmd.MarkFlagRequired("booking")
	return cmd
}

func (a *app) bookingDeleteCommand() *cobra.Command {
	var id string
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove a booking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			if yes {
				err = s.mirror.DeleteBooking(cmd.Context(), id)
			} else {
				err = s.mirror.OnDeleteBooking(cmd.Context(), id, a.prompter(cmd))
			}
			if err != nil {
				return err
			}
			return s.showBooking(cmd, id)
		},
	}
	cmd.Flags().StringVar(&id, "booking", "", "booking id, e.g. MS0-T1")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	_ = cmd.MarkFlagRequired("booking")
	return cmd
}

// showBooking prints the session a booking id belongs to.
func (s *session) showBooking(cmd *cobra.Command, bookingID string) error {
	tag, _, err := mirror.ParseBookingID(bookingID)
	if err != nil {
		return err
	}
	return s.show(cmd, tag)
}

// show prints one session card.
func (s *session) show(cmd *cobra.Command, tag string) error {
	card, ok := s.doc.TerminalSession(tag)
	if !ok {
		return fmt.Errorf("%w: %s", mirror.ErrUnknownSession, tag)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), card)
	return err
}
