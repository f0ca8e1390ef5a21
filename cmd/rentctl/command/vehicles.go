package command

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"github.com/ukydev/transportease/internal/auth"
	"github.com/ukydev/transportease/internal/catalog"
	"github.com/ukydev/transportease/internal/models"
	"github.com/ukydev/transportease/internal/pricing"
)

var errOwnerOnly = errors.New("only vehicle owners can add vehicles")

func newVehiclesCmd(a *app) *cobra.Command {
	var (
		criteria = models.NewFilterCriteria()
		maxPrice float64
	)
	cmd := &cobra.Command{
		Use:   "vehicles",
		Short: "List vehicles, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := criteria
			c.MaxPricePerKm = math.Inf(1)
			if cmd.Flags().Changed("max-price") {
				c.MaxPricePerKm = maxPrice
			}

			svc := catalog.NewService(a.client(""), nil, a.log)
			vehicles, err := svc.Search(cmd.Context(), c)
			if err != nil {
				return err
			}
			printVehicles(cmd.OutOrStdout(), vehicles)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&criteria.City, "city", models.FilterAll, "city name or all")
	f.StringVar(&criteria.Type, "type", models.FilterAll, typeHelp(models.FilterAll))
	f.StringVar(&criteria.Search, "search", "", "match name or description")
	f.Float64Var(&maxPrice, "max-price", models.DefaultMaxPricePerKm, "maximum price per km")

	cmd.AddCommand(newVehicleAddCmd(a))
	return cmd
}

// typeHelp lists the vehicle types, plus any extra choices, for flag usage.
func typeHelp(extra ...string) string {
	names := make([]string, 0, len(models.VehicleTypes)+len(extra))
	for _, t := range models.VehicleTypes {
		names = append(names, string(t))
	}
	return "one of " + strings.Join(append(names, extra...), ", ")
}

func printVehicles(w io.Writer, vehicles []models.Vehicle) {
	if len(vehicles) == 0 {
		fmt.Fprintln(w, "No vehicles match your filters")
		return
	}
	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("ID", "NAME", "TYPE", "CITY", "SEATS", "PER KM", "RATING", "AVAILABLE")
	for _, v := range vehicles {
		table.AddRow(
			v.ID,
			v.Name,
			v.Type,
			v.City,
			v.Capacity,
			pricing.FormatCurrency(v.PricePerKm),
			fmt.Sprintf("%.1f (%d)", v.Rating, v.ReviewCount),
			v.Available,
		)
	}
	fmt.Fprintln(w, table)
	fmt.Fprintf(w, "%d vehicle(s)\n", len(vehicles))
}

func newVehicleAddCmd(a *app) *cobra.Command {
	var (
		req       models.NewVehicleRequest
		vtype     string
		imagePath string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "List a new vehicle (owners only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, api, err := a.requireUser()
			if err != nil {
				return err
			}
			if !u.IsOwner() {
				return errOwnerOnly
			}

			req.Type = models.VehicleType(vtype)
			if t, ok := models.ParseVehicleType(vtype); ok {
				req.Type = t
			}
			req.OwnerEmail = u.Email
			if imagePath != "" {
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("failed to read image: %w", err)
				}
				req.Image = data
				req.ImageName = filepath.Base(imagePath)
			}
			if err := auth.Validate(req); err != nil {
				return err
			}

			v, err := api.CreateVehicle(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added vehicle %s (%s) at %s per km\n",
				v.Name, v.ID, pricing.FormatCurrency(v.PricePerKm))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&vtype, "type", "", typeHelp())
	f.StringVar(&req.Name, "name", "", "vehicle name")
	f.StringVar(&req.RegistrationNumber, "registration", "", "registration number")
	f.IntVar(&req.Capacity, "capacity", 0, "seats")
	f.Float64Var(&req.RatePerKm, "rate", 0, "price per km")
	f.StringVar(&req.City, "city", "", "city")
	f.BoolVar(&req.Available, "available", true, "available for booking")
	f.StringVar(&imagePath, "image", "", "photo to upload")
	return cmd
}

func newQuoteCmd(a *app) *cobra.Command {
	var (
		distance  string
		vehicleID string
		rate      float64
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Estimate the cost of a trip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := pricing.ParseDistance(distance)
			if err != nil {
				return err
			}

			vehicle := models.Vehicle{PricePerKm: rate}
			if vehicleID != "" {
				svc := catalog.NewService(a.client(""), nil, a.log)
				v, err := svc.Find(cmd.Context(), vehicleID)
				if err != nil {
					return err
				}
				vehicle = *v
			} else if !cmd.Flags().Changed("rate") {
				return errors.New("Please select a vehicle")
			}

			q, err := pricing.NewQuote(vehicle, d)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if q.Vehicle != "" {
				fmt.Fprintf(w, "Vehicle: %s\n", q.Vehicle)
			}
			fmt.Fprintf(w, "Distance: %s km at %s per km\n",
				strconv.FormatFloat(q.DistanceKm, 'f', -1, 64), pricing.FormatCurrency(q.PricePerKm))
			fmt.Fprintf(w, "Estimated cost: %s\n", q.Formatted)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&distance, "distance", "", "trip distance in km")
	f.StringVar(&vehicleID, "vehicle", "", "vehicle id")
	f.Float64Var(&rate, "rate", 0, "price per km when no vehicle is given")
	return cmd
}
