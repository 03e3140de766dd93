package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/agentic-daily-planner/agent/agents/assistant"
	"github.com/tanpawarit/agentic-daily-planner/agent/agents/reasoner"
	contractx "github.com/tanpawarit/agentic-daily-planner/agent/contract"
	llmx "github.com/tanpawarit/agentic-daily-planner/agent/llm"
	planx "github.com/tanpawarit/agentic-daily-planner/agent/plan"
	toolx "github.com/tanpawarit/agentic-daily-planner/agent/tool"
	configx "github.com/tanpawarit/agentic-daily-planner/pkg/config"
	_ "github.com/tanpawarit/agentic-daily-planner/pkg/logger/autoload"
	searchx "github.com/tanpawarit/agentic-daily-planner/pkg/search"
)

type AppConfig struct {
	// Backend selects plan persistence: "file" or "postgres".
	Backend string `envconfig:"PLANS_BACKEND" default:"file"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")

	store, err := newStore(ctx, appCfg.Backend)
	if err != nil {
		log.Fatal().Err(err).Str("backend", appCfg.Backend).Msg("initialize plan store")
	}

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")

	searchCfg := configx.MustNew[searchx.Config]("SEARCH")
	searchClient, err := searchx.NewClient(*searchCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize search client")
	}

	registry, err := reasoner.NewRegistry(ctx, *llmCfg, toolx.Infos())
	if err != nil {
		log.Fatal().Err(err).Msg("initialize model registry")
	}

	gateway, err := toolx.NewGateway(toolx.Deps{
		Store:     store,
		Search:    searchClient,
		Generator: registry.Generator(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("initialize tool gateway")
	}

	agent, err := assistant.New(store, registry, gateway)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize assistant")
	}

	printStartupStatus(ctx, store)

	// Single-shot mode: join the remaining args into one message.
	if args := flaglessArgs(); len(args) > 0 {
		message := strings.Join(args, " ")
		fmt.Println("You:", message)
		runTurn(ctx, agent, message, nil)
		return
	}

	fmt.Println("Daily Planning Assistant")
	fmt.Println("Type a message and press Enter. Ctrl+C or empty EOF to exit.")
	fmt.Println()

	var history []contractx.Message
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}

		result, ok := runTurn(ctx, agent, message, history)
		if !ok {
			continue
		}
		history = append(history,
			contractx.Message{Role: "user", Content: message},
			contractx.Message{Role: "assistant", Content: result.Reply},
		)
	}
	fmt.Println("\nBye!")
}

func runTurn(ctx context.Context, agent *assistant.Assistant, message string, history []contractx.Message) (contractx.TurnResult, bool) {
	result, err := agent.HandleMessage(ctx, message, history)
	if err != nil {
		log.Error().Err(err).Msg("turn failed")
		fmt.Println("\nAssistant:\nSomething went wrong with that request. Please try again.")
		fmt.Println()
		return contractx.TurnResult{}, false
	}

	fmt.Println("\nAssistant:\n" + result.Reply)
	fmt.Println()
	return result, true
}

func newStore(ctx context.Context, backend string) (planx.Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "file":
		cfg := configx.MustNew[planx.FileStoreConfig]("PLANS")
		return planx.NewFileStore(*cfg)
	case "postgres":
		cfg := configx.MustNew[planx.BunStoreConfig]("PLANS_PG")
		store, err := planx.NewBunStore(*cfg)
		if err != nil {
			return nil, err
		}
		if err := store.Init(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown plans backend %q", backend)
	}
}

func printStartupStatus(ctx context.Context, store planx.Store) {
	latest, err := store.Latest(ctx)
	if err != nil {
		fmt.Println("No previous plans found. Ready to create your first daily plan!")
		return
	}
	fmt.Println(latest.Summary())
}

// flaglessArgs strips flags such as -env so a bare goal can be passed
// on the command line.
func flaglessArgs() []string {
	var args []string
	skipNext := false
	for _, arg := range os.Args[1:] {
		if skipNext {
			skipNext = false
			continue
		}
		if strings.HasPrefix(arg, "-") {
			if !strings.Contains(arg, "=") {
				skipNext = true
			}
			continue
		}
		args = append(args, arg)
	}
	return args
}
