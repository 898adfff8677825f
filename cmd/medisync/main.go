package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/sagarpkl/medisync/internal/cache"
	"github.com/sagarpkl/medisync/internal/codes"
	"github.com/sagarpkl/medisync/internal/config"
	"github.com/sagarpkl/medisync/internal/models"
	"github.com/sagarpkl/medisync/internal/registrytest"
	"github.com/sagarpkl/medisync/internal/remote"
	"github.com/sagarpkl/medisync/internal/service"
	"github.com/sagarpkl/medisync/internal/store"
	"github.com/sagarpkl/medisync/internal/transform"
)

var (
	version   string
	buildDate string
)

// repl runs the interactive shell loop, accepting commands to inspect and
// mutate the synchronized patient list.
func repl(st *store.Store, svc *service.PatientService) {
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("medisync> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, fetch, list, get <id>, add, clear, reset, exit")
		case "fetch":
			st.Fetch(ctx)
			report(st)
		case "list":
			for _, p := range st.Patients() {
				fmt.Printf("ID: %s\nName: %s %s\nGender: %s\nAge: %s %s\nRelationship: %s\nDistrict: %s\n---\n",
					p.ID, p.FirstName, p.LastName, p.Gender, p.Age, p.AgeUnit, p.Relationship, p.District)
			}
		case "get":
			if len(args) < 2 {
				fmt.Println("Usage: get <id>")
				continue
			}
			p, ok := st.Patient(args[1])
			if !ok {
				fmt.Println("Patient not found")
				continue
			}
			fmt.Printf("%+v\n", p)
		case "add":
			form := promptForm(scanner)
			fieldErrs, created := svc.Create(ctx, form)
			for field, msg := range fieldErrs {
				fmt.Printf("%s: %s\n", field, msg)
			}
			if created {
				fmt.Println(st.SuccessMessage())
				fmt.Println("Run 'fetch' to see the new record")
			} else if len(fieldErrs) == 0 {
				fmt.Println(st.ErrorMessage())
			}
		case "clear":
			st.ClearError()
			st.ClearSuccessMessage()
		case "reset":
			st.Reset()
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func report(st *store.Store) {
	if msg := st.ErrorMessage(); msg != "" {
		fmt.Println("Error:", msg)
		return
	}
	fmt.Printf("Synced %d patients\n", len(st.Patients()))
}

// promptForm collects the editable patient fields from stdin. Selector
// fields list the registry's known names; other input falls back to the
// category default at encoding time.
func promptForm(scanner *bufio.Scanner) models.PatientForm {
	read := func(label string) string {
		fmt.Printf("%s: ", label)
		if !scanner.Scan() {
			return ""
		}
		return strings.TrimSpace(scanner.Text())
	}
	readChoice := func(label string, category codes.Category) string {
		names := codes.Names(category)
		sort.Strings(names)
		return read(fmt.Sprintf("%s (%s)", label, strings.Join(names, ", ")))
	}

	return models.PatientForm{
		FirstName:    read("First name"),
		LastName:     read("Last name"),
		Gender:       read("Gender (male/female/other)"),
		DateOfBirth:  read("Date of birth (YYYY/MM/DD)"),
		Age:          read("Age"),
		Email:        read("Email (optional)"),
		Phone:        read("Mobile number"),
		Relationship: readChoice("Relationship", codes.Relationship),
		District:     readChoice("District", codes.District),
		Municipality: readChoice("Municipality", codes.Municipality),
		Ward:         read("Ward"),
		Address:      read("Address (optional)"),
	}
}

// main parses command-line flags and dispatches to the serve or shell
// commands.
func main() {
	var (
		cmd     string
		listen  string
		showVer bool
	)

	flag.StringVar(&cmd, "cmd", "shell", "command: shell | serve")
	flag.StringVar(&listen, "listen", "localhost:8080", "address for the fake registry in serve mode")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	opts := config.Parse()

	if showVer {
		fmt.Printf("medisync\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	switch cmd {
	case "serve":
		fake := registrytest.New(logger)
		fake.SetOwner(models.RawRecord{
			MidasID:   "1",
			FirstName: "Demo",
			LastName:  "Account",
			Gender:    "Male",
			DOBAD:     "1990/01/01",
			District:  "26",
			VDC:       "1",
		})
		logger.Info("fake registry listening", zap.String("addr", listen))
		if err := http.ListenAndServe(listen, fake.Router()); err != nil {
			log.Fatal(err)
		}
	case "shell":
		httpClient := &http.Client{Timeout: opts.Timeout()}
		client := remote.NewClient(httpClient, opts.RegistryURL, logger)
		tr := transform.New()
		st := store.New(client, tr, logger)

		var kv cache.KV = cache.NewMemoryKV()
		if opts.RedisAddr != "" {
			kv = cache.NewRedisKV(redis.NewClient(&redis.Options{Addr: opts.RedisAddr}))
		}
		ca := cache.New(kv, client, tr, opts.Staleness(), logger)

		svc := service.New(st, ca, client, tr, logger)
		repl(st, svc)
	default:
		log.Fatalf("unknown command: %s", cmd)
	}
}
