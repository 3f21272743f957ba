package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/outfitcal/daybook/internal/client/api"
)

// SelectDate prompts for a calendar date, switches the session to it and
// loads the stored record, if any.
func (a *App) SelectDate(ctx context.Context) error {
	date, err := getSimpleText(a.reader, "Enter date (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.session.SetDate(date); err != nil {
		fmt.Println(err)
		return err
	}
	if err := a.session.Load(ctx); err != nil {
		fmt.Println("Load failed:", err)
		return err
	}

	a.printDay()
	return nil
}

// Show prints the current working state for the selected date.
func (a *App) Show(ctx context.Context) error {
	if a.session.Day() == nil {
		fmt.Println("No date loaded, use the date command first.")
		return nil
	}
	a.printDay()
	return nil
}

// Comment prompts for the day's comment text.
func (a *App) Comment(ctx context.Context) error {
	text, err := getSimpleText(a.reader, "Enter comment", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.session.SetComment(text); err != nil {
		fmt.Println(err)
		return err
	}
	fmt.Println("Comment updated, save to persist.")
	return nil
}

// Photo prompts for a local file path and stages the image for the next
// save.
func (a *App) Photo(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Enter photo file path", os.Stdout)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("Cannot read file:", err)
		return err
	}

	photo := &api.Photo{
		FileName:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}
	if err := a.session.AttachPhoto(photo); err != nil {
		fmt.Println(err)
		return err
	}

	fmt.Printf("Photo %s staged (%d bytes), save to upload.\n", photo.FileName, len(data))
	return nil
}

// Fix prompts for a coordinate and sets it as the device location fix.
func (a *App) Fix(ctx context.Context) error {
	line, err := getSimpleText(a.reader, "Enter coordinate (lat lon)", os.Stdout)
	if err != nil {
		return err
	}

	parts := strings.Fields(line)
	if len(parts) != 2 {
		fmt.Println("Expected two numbers, e.g.: 35.6895 139.6917")
		return nil
	}
	lat, errLat := strconv.ParseFloat(parts[0], 64)
	lon, errLon := strconv.ParseFloat(parts[1], 64)
	if errLat != nil || errLon != nil {
		fmt.Println("Expected two numbers, e.g.: 35.6895 139.6917")
		return nil
	}

	a.locator.Set(lat, lon)
	fmt.Println("Fix set.")
	return nil
}

// Weather resolves current weather for the selected date and stages the
// snapshot.
func (a *App) Weather(ctx context.Context) error {
	if err := a.session.RefreshWeather(ctx); err != nil {
		fmt.Println("Weather refresh failed:", err)
		return err
	}

	stage := a.session.Stage()
	if stage.Weather == nil {
		fmt.Println("Weather service returned no snapshot.")
		return nil
	}
	if stage.Place != "" {
		fmt.Printf("%s: %.1f C, %s (staged, save to persist)\n", stage.Place, stage.Weather.TempC, stage.Weather.Label)
	} else {
		fmt.Printf("%.1f C, %s (staged, save to persist)\n", stage.Weather.TempC, stage.Weather.Label)
	}
	return nil
}

// Save commits the working state for the selected date.
func (a *App) Save(ctx context.Context) error {
	if err := a.session.Save(ctx); err != nil {
		fmt.Println("Save failed:", err)
		return err
	}
	fmt.Println("Saved.")
	a.printDay()
	return nil
}

func (a *App) printDay() {
	day := a.session.Day()
	if day == nil {
		return
	}

	fmt.Println("Date:   ", day.Date)
	fmt.Println("Status: ", a.session.State())
	if c := a.session.Comment(); c != "" {
		fmt.Println("Comment:", c)
	}
	if stage := a.session.Stage(); stage != nil && stage.Weather != nil {
		fmt.Printf("Weather: %.1f C, %s (staged)\n", stage.Weather.TempC, stage.Weather.Label)
	} else if day.Weather != nil {
		fmt.Printf("Weather: %.1f C, %s\n", day.Weather.TempC, day.Weather.Label)
	}
	if day.Place != "" {
		fmt.Println("Place:  ", day.Place)
	}
	if day.ImageURL != "" {
		fmt.Println("Photo:  ", day.ImageURL)
	}
	if p := a.session.Photo(); p != nil {
		fmt.Println("Staged photo:", p.FileName)
	}
}
