package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"github.com/urfave/cli/v2"
)

type healthSnapshot struct {
	Status         string `json:"status"`
	Timestamp      string `json:"timestamp"`
	ConnectedUsers int    `json:"connectedUsers"`
}

type countSnapshot struct {
	Count int `json:"count"`
}

// monitorCmd renders a small terminal dashboard against a running server.
func monitorCmd() *cli.Command {
	return &cli.Command{
		Name:    "monitor",
		Aliases: []string{"m"},
		Usage:   "Live terminal dashboard for a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: "http://localhost:5000",
				Usage: "Base URL of the server to monitor",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Value: 2 * time.Second,
				Usage: "Poll interval",
			},
		},
		Action: func(c *cli.Context) error {
			return runMonitor(c.String("addr"), c.Duration("interval"))
		},
	}
}

func runMonitor(baseURL string, interval time.Duration) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("initializing terminal ui: %w", err)
	}
	defer ui.Close()

	status := widgets.NewParagraph()
	status.Title = "Server"
	status.SetRect(0, 0, 50, 5)

	connected := widgets.NewPlot()
	connected.Title = "Connected users"
	connected.Data = [][]float64{{0, 0}}
	connected.SetRect(0, 5, 50, 15)
	connected.AxesColor = ui.ColorWhite
	connected.LineColors[0] = ui.ColorGreen

	pending := widgets.NewParagraph()
	pending.Title = "Future releases"
	pending.SetRect(0, 15, 50, 18)

	client := &http.Client{Timeout: 5 * time.Second}
	refresh := func() {
		var health healthSnapshot
		if err := fetchJSON(client, baseURL+"/health", &health); err != nil {
			status.Text = fmt.Sprintf("UNREACHABLE\n%v", err)
			status.BorderStyle.Fg = ui.ColorRed
		} else {
			status.Text = fmt.Sprintf("Status: %s\nAt: %s\nUsers: %d",
				health.Status, health.Timestamp, health.ConnectedUsers)
			status.BorderStyle.Fg = ui.ColorGreen
			connected.Data[0] = append(connected.Data[0], float64(health.ConnectedUsers))
			if len(connected.Data[0]) > 40 {
				connected.Data[0] = connected.Data[0][1:]
			}
		}

		var count countSnapshot
		if err := fetchJSON(client, baseURL+"/api/notifications/count", &count); err == nil {
			pending.Text = fmt.Sprintf("Scheduled releases: %d", count.Count)
		}

		ui.Render(status, connected, pending)
	}
	refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	events := ui.PollEvents()

	for {
		select {
		case e := <-events:
			switch e.ID {
			case "q", "<C-c>":
				return nil
			case "<Resize>":
				ui.Clear()
				refresh()
			}
		case <-ticker.C:
			refresh()
		}
	}
}

func fetchJSON(client *http.Client, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
