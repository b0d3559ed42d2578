package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iliyamo/cinema-session-booking/internal/model"
)

func (a *app) sessionCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "session", Short: "Manage sessions"}

	var title, at, seats string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := a.prompter(cmd)
			for _, q := range []struct {
				dst *string
				msg string
			}{
				{&title, "Movie title:"},
				{&at, "Time:"},
				{&seats, "Seats:"},
			} {
				if *q.dst != "" {
					continue
				}
				v, ok := p.Prompt(q.msg, "")
				if !ok || v == "" {
					return fmt.Errorf("%s required", q.msg[:len(q.msg)-1])
				}
				*q.dst = v
			}
			n, err := strconv.Atoi(seats)
			if err != nil {
				return fmt.Errorf("seats must be a number: %q", seats)
			}

			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			created, err := s.mirror.AddSession(cmd.Context(), title, at, model.SeatCount(n))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created session %s\n", created.Tag)
			return nil
		},
	}
	add.Flags().StringVar(&title, "title", "", "movie title")
	add.Flags().StringVar(&at, "time", "", "show time, free text")
	add.Flags().StringVar(&seats, "seats", "", "number of seats")

	cmd.AddCommand(add)
	return cmd
}
