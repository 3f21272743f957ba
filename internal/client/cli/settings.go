package cli

import (
	"context"
	"fmt"
	"os"
)

// City prompts for a city name and switches the account to city mode with
// it.
func (a *App) City(ctx context.Context) error {
	city, err := getSimpleText(a.reader, "Enter city", os.Stdout)
	if err != nil {
		return err
	}

	st, err := a.client.UpdateSettings(ctx, "city", city)
	if err != nil {
		fmt.Println("Settings update failed:", err)
		return err
	}

	fmt.Printf("Weather will be resolved for %q.\n", st.City)
	return nil
}

// Mode prompts for the location mode. Switching to city mode keeps the
// stored city name.
func (a *App) Mode(ctx context.Context) error {
	mode, err := getSimpleText(a.reader, "Enter location mode (device or city)", os.Stdout)
	if err != nil {
		return err
	}
	if mode != "device" && mode != "city" {
		fmt.Println("Unknown mode, expected device or city.")
		return nil
	}

	current, err := a.client.Settings(ctx)
	if err != nil {
		fmt.Println("Settings load failed:", err)
		return err
	}

	st, err := a.client.UpdateSettings(ctx, mode, current.City)
	if err != nil {
		fmt.Println("Settings update failed:", err)
		return err
	}

	if st.Mode == "device" {
		fmt.Println("Weather will use the device location fix.")
	} else {
		fmt.Printf("Weather will be resolved for %q.\n", st.City)
	}
	return nil
}
