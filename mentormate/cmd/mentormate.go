// Terminal client for the MentorMate backend.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"mentormate/mentormate/client"
	"mentormate/mentormate/utils/logging"

	"go.uber.org/zap"
)

func main() {
	logging.InitLogger()

	serverURL := os.Getenv("MENTORMATE_URL")
	if serverURL == "" {
		serverURL = "http://localhost:5000"
	}
	username := "you"
	if len(os.Args) > 1 {
		username = os.Args[1]
	}

	ctx := context.Background()
	api := client.NewAPIClient(serverURL)
	if err := api.Login(ctx, username); err != nil {
		fmt.Printf("login failed: %v\n", err)
		os.Exit(1)
	}

	history, err := api.History(ctx)
	if err != nil {
		fmt.Printf("failed to load messages: %v\n", err)
		os.Exit(1)
	}
	timeline := client.NewTimeline(history)

	capture := client.NewCaptureController(client.UnsupportedRecognizer{})
	player := client.FilePlayer{Dir: os.TempDir(), Format: "mp3"}
	var lastMentor *client.Entry

	fmt.Printf("MentorMate — logged in as %s. Type a message, /voice, /replay or /quit.\n\n", username)
	render(timeline, username)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case line == "/voice":
			_, active, err := capture.Toggle(ctx)
			if errors.Is(err, client.ErrCaptureUnsupported) {
				fmt.Println("Speech recognition not supported")
				continue
			}
			if err != nil {
				fmt.Printf("Speech recognition error: %v\n", err)
				continue
			}
			if active {
				fmt.Println("recording... type /voice to stop")
			} else {
				fmt.Println("recording stopped")
			}
			continue
		case line == "/replay":
			if lastMentor == nil || len(lastMentor.Audio) == 0 {
				fmt.Println("nothing to replay")
				continue
			}
			if err := player.Play(lastMentor.Audio); err != nil {
				fmt.Printf("Failed to play audio: %v\n", err)
			}
			continue
		}

		timeline = submitTurn(ctx, api, player, timeline, line, &lastMentor)
		render(timeline, username)
	}
}

// submitTurn runs the optimistic-insert → server call → reconcile cycle
// for one utterance.
func submitTurn(ctx context.Context, api *client.APIClient, player client.Player, timeline client.Timeline, text string, lastMentor **client.Entry) client.Timeline {
	timeline, tempID := timeline.InsertOptimistic(text)
	fmt.Println("mentor is thinking...")

	turn, err := api.SubmitTurn(ctx, text)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			fmt.Println("Invalid session, please log in")
			os.Exit(1)
		}
		logging.ErrorLogger.Error("turn failed", zap.Error(err))
		fmt.Println("Failed to send message")
		return timeline.MarkFailed(tempID, err.Error())
	}

	userEntry := client.FromMessage(turn.UserMessage, nil)
	mentorEntry := client.FromMessage(turn.MentorMessage, turn.Audio)
	timeline, added := timeline.Reconcile(tempID, userEntry, mentorEntry)

	if added != nil {
		*lastMentor = added
		if len(added.Audio) > 0 {
			if err := player.Play(added.Audio); err != nil {
				fmt.Printf("Failed to play audio: %v\n", err)
			}
		}
	}
	return timeline
}

func render(timeline client.Timeline, username string) {
	fmt.Printf("--- User: %s ---\n", username)
	for _, e := range timeline.MinePane() {
		printEntry(e)
	}
	fmt.Println("--- Mentor ---")
	for _, e := range timeline.MentorPane() {
		printEntry(e)
	}
	fmt.Println()
}

func printEntry(e client.Entry) {
	marker := " "
	if e.Pending {
		marker = "…"
	}
	if e.Failed {
		marker = "!"
	}
	fmt.Printf("[%s] %s %s\n", e.CreatedAt.Format("15:04:05"), marker, e.Text)
}
