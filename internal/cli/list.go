package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/iliyamo/cinema-session-booking/internal/mirror"
)

type bookingOut struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type sessionOut struct {
	Tag            string       `json:"tag" yaml:"tag"`
	MovieTitle     string       `json:"movieTitle" yaml:"movieTitle"`
	Time           string       `json:"time" yaml:"time"`
	SeatsAmount    int          `json:"seatsAmount" yaml:"seatsAmount"`
	SeatsAvailable int          `json:"seatsAvailable" yaml:"seatsAvailable"`
	Bookings       []bookingOut `json:"bookings" yaml:"bookings"`
}

func toOutput(sessions []*mirror.Session) []sessionOut {
	out := make([]sessionOut, 0, len(sessions))
	for _, s := range sessions {
		so := sessionOut{
			Tag:            s.Tag,
			MovieTitle:     s.MovieTitle,
			Time:           s.Time,
			SeatsAmount:    int(s.SeatsAmount),
			SeatsAvailable: s.SeatsAvailable(),
			Bookings:       make([]bookingOut, len(s.Bookings)),
		}
		for i, name := range s.Bookings {
			so.Bookings[i] = bookingOut{ID: s.BookingID(i), Name: name}
		}
		out = append(out, so)
	}
	return out
}

func (a *app) listCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show all sessions and their bookings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			return s.write(cmd.OutOrStdout(), format)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "table", "output format: table, json, yaml or html")
	return cmd
}

func (s *session) write(w io.Writer, format string) error {
	switch format {
	case "table", "":
		_, err := io.WriteString(w, s.doc.Terminal())
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(toOutput(s.mirror.Sessions()))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(toOutput(s.mirror.Sessions())); err != nil {
			return err
		}
		return enc.Close()
	case "html":
		return s.doc.HTML(w)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
