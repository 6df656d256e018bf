package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/huggnote/api/internal/client"
	"github.com/huggnote/api/internal/config"
	"github.com/huggnote/api/internal/model"
	"github.com/huggnote/api/internal/poller"
	"github.com/huggnote/api/internal/service"
	"github.com/huggnote/api/internal/store"
)

const cliOwner = "songctl"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "songctl",
	Short: "Drive MusicGPT generations from the command line",
	Long:  `songctl submits a song, polls it to a terminal state and prints the result, using the same poller as the server.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Submit a prompt and wait for the song",
	Run: func(cmd *cobra.Command, args []string) {
		prompt, _ := cmd.Flags().GetString("prompt")
		style, _ := cmd.Flags().GetString("style")
		instrumental, _ := cmd.Flags().GetBool("instrumental")
		vocalOnly, _ := cmd.Flags().GetBool("vocal-only")
		interval, _ := cmd.Flags().GetDuration("interval")
		dbPath, _ := cmd.Flags().GetString("db")

		if prompt == "" {
			log.Fatalln("--prompt is required")
		}

		musicClient := client.NewMusicGPTClient(&cfg.MusicGPT)
		if !musicClient.IsConfigured() {
			log.Fatalln("MUSICGPT_API_KEY is not set")
		}

		var backend store.Backend = store.NewMemoryBackend()
		if dbPath != "" {
			sqliteBackend, err := store.NewSQLiteBackend(dbPath)
			if err != nil {
				log.Fatalf("Failed to open %s: %v", dbPath, err)
			}
			defer sqliteBackend.Close()
			backend = sqliteBackend
		}
		songStore := store.New(backend)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := musicClient.GenerateMusic(ctx, &client.GenerateRequest{
			Prompt:           service.ClampPrompt(prompt),
			MusicStyle:       style,
			MakeInstrumental: instrumental,
			VocalOnly:        vocalOnly,
		})
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}
		if !res.Success {
			log.Fatalf("Generation rejected: %s", res.Message)
		}

		// The CLI pays for its own attempt so the store invariants hold.
		if _, err := songStore.RecordOrder(ctx, cliOwner, model.PlanSingle); err != nil {
			log.Fatalf("Failed to fund song: %v", err)
		}
		eta := res.ETASeconds(cfg.Polling.DefaultETA)
		song, err := songStore.CreateSong(ctx, cliOwner, model.SongInput{
			Recipient: "songctl",
			Vibe:      style,
			Prompt:    prompt,
			Handle: model.Handle{
				TaskID:        res.TaskID,
				ConversionID1: res.ConversionID1,
				ConversionID2: res.ConversionID2,
			},
			ETA: eta,
		})
		if err != nil {
			log.Fatalf("Failed to record song: %v", err)
		}

		pollCfg := poller.Config{
			Interval:     interval,
			Buffer:       cfg.Polling.Buffer,
			DefaultETA:   cfg.Polling.DefaultETA,
			DefaultCover: cfg.Songs.DefaultCover,
		}
		fmt.Printf("Task %s submitted, eta %ds, up to %d checks every %s\n",
			res.TaskID, eta, poller.MaxAttempts(eta, interval, pollCfg.Buffer), interval)

		manager := poller.NewManager(musicClient, songStore, pollCfg, poller.RealClock())
		defer manager.Shutdown()

		result, err := manager.Run(ctx, poller.Job{
			Owner:  cliOwner,
			SongID: song.ID,
			Handle: song.Handle(),
			ETA:    song.ETA,
		})
		if err != nil {
			log.Fatalf("Polling failed: %v", err)
		}

		final, err := songStore.Song(context.WithoutCancel(ctx), cliOwner, song.ID)
		if err != nil {
			log.Fatalf("Failed to read song: %v", err)
		}
		printJSON(final)

		if !result.Terminal() {
			log.Fatalf("Polling interrupted after %d attempts: %v", result.Attempts, result.Err)
		}
		if result.Status != model.SongStatusReady {
			os.Exit(1)
		}
	},
}

var statusCmd = &cobra.Command{
	Use:   "status id",
	Short: "Query a task or conversion once",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		idType, _ := cmd.Flags().GetString("id-type")
		if idType != model.IDTypeTaskID && idType != model.IDTypeConversionID {
			log.Fatalf("--id-type must be %s or %s", model.IDTypeTaskID, model.IDTypeConversionID)
		}

		musicClient := client.NewMusicGPTClient(&cfg.MusicGPT)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		res, err := musicClient.GetConversion(ctx, args[0], idType)
		if err != nil {
			log.Fatalf("Status query failed: %v", err)
		}
		printJSON(res)

		conv := res.Conversion
		audio := conv.AudioURL()
		cover := conv.CoverImage()
		fmt.Printf("status: %s %s\n", conv.Status(), conv.StatusMessage())
		if audio.Found {
			fmt.Printf("audio:  %s (from %s)\n", audio.Value, audio.Field)
		} else {
			fmt.Println("audio:  not found")
		}
		fmt.Printf("cover:  %s\n", cover.Or(cfg.Songs.DefaultCover))
	},
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Draft a generation prompt with Groq",
	Run: func(cmd *cobra.Command, args []string) {
		form := &model.PromptForm{}
		form.RecipientName, _ = cmd.Flags().GetString("recipient")
		form.Relationship, _ = cmd.Flags().GetString("relationship")
		form.Vibe, _ = cmd.Flags().GetString("vibe")
		form.Style, _ = cmd.Flags().GetString("style")
		form.Story, _ = cmd.Flags().GetString("story")
		form.IncludeName, _ = cmd.Flags().GetBool("include-name")

		prompts := service.NewPromptService(client.NewGroqClient(&cfg.Groq), nil)
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		prompt, err := prompts.Compose(ctx, form)
		if err != nil {
			log.Fatalf("Failed to draft prompt: %v", err)
		}
		fmt.Println(prompt)
	},
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Printf("Failed to print result: %v", err)
	}
}

func init() {
	generateCmd.Flags().String("prompt", "", "generation prompt (max 300 characters)")
	generateCmd.Flags().String("style", "Pop", "music style")
	generateCmd.Flags().Bool("instrumental", false, "generate without vocals")
	generateCmd.Flags().Bool("vocal-only", false, "generate vocals only")
	generateCmd.Flags().Duration("interval", 5*time.Second, "status poll interval")
	generateCmd.Flags().String("db", "", "keep the song in this sqlite file instead of memory")

	statusCmd.Flags().String("id-type", model.IDTypeTaskID, "task_id or conversion_id")

	promptCmd.Flags().String("recipient", "", "recipient name")
	promptCmd.Flags().String("relationship", "", "relationship to the recipient")
	promptCmd.Flags().String("vibe", "", "mood of the song")
	promptCmd.Flags().String("style", "", "music style")
	promptCmd.Flags().String("story", "", "story to tell")
	promptCmd.Flags().Bool("include-name", false, "mention the recipient by name")

	rootCmd.AddCommand(generateCmd, statusCmd, promptCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
