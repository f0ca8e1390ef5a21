package command

import (
	"fmt"
	"io"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"github.com/ukydev/transportease/internal/auth"
	"github.com/ukydev/transportease/internal/models"
	"github.com/ukydev/transportease/internal/pricing"
)

func newBookCmd(a *app) *cobra.Command {
	var req models.BookingRequest
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a trip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, api, err := a.requireUser()
			if err != nil {
				return err
			}
			req.UserEmail = u.Email
			if err := auth.Validate(req); err != nil {
				return err
			}

			b, err := api.CreateBooking(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booking %s %s: %s to %s, %s\n",
				b.ID, b.Status, b.PickupLocation, b.DropLocation, pricing.FormatCurrency(b.TotalCost))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.VehicleID, "vehicle", "", "vehicle id")
	f.StringVar(&req.PickupLocation, "pickup", "", "pickup location")
	f.StringVar(&req.DropLocation, "drop", "", "drop location")
	f.Float64Var(&req.DistanceKm, "distance", 0, "trip distance in km")
	return cmd
}

func newBookingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List your bookings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, api, err := a.requireUser()
			if err != nil {
				return err
			}
			bookings, err := api.ListBookings(cmd.Context(), u.Email)
			if err != nil {
				return err
			}
			printBookings(cmd.OutOrStdout(), bookings)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "pay <booking-id>",
		Short: "Pay for a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := a.requireUser()
			if err != nil {
				return err
			}
			b, err := api.PayBooking(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Paid %s for booking %s\n", pricing.FormatCurrency(b.TotalCost), b.ID)
			return nil
		},
	})
	return cmd
}

func printBookings(w io.Writer, bookings []models.Booking) {
	if len(bookings) == 0 {
		fmt.Fprintln(w, "No bookings yet")
		return
	}
	table := uitable.New()
	table.AddRow("ID", "VEHICLE", "FROM", "TO", "KM", "COST", "STATUS", "PAID")
	for _, b := range bookings {
		table.AddRow(b.ID, b.VehicleID, b.PickupLocation, b.DropLocation,
			b.DistanceKm, pricing.FormatCurrency(b.TotalCost), b.Status, b.Paid)
	}
	fmt.Fprintln(w, table)
}
