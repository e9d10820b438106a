package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/xhad/minirag/internal/models"
	"github.com/xhad/minirag/pkg/answer"
	cfgPkg "github.com/xhad/minirag/pkg/config"
	"github.com/xhad/minirag/pkg/llm"
	"github.com/xhad/minirag/pkg/rag"
	"github.com/xhad/minirag/pkg/scraper"
	"github.com/xhad/minirag/pkg/store"
	"github.com/xhad/minirag/server"
)

var testQueries = []string{
	"What is the warranty for UltraBlend 3000?",
	"How do I schedule maintenance for UltraBlend 3000?",
	"How many paid leaves do employees get?",
	"How long do returns take to process refunds?",
	"Does SafeGrill have auto-shutoff?",
}

type options struct {
	configPath  string
	query       string
	debug       bool
	test        bool
	docsDir     string
	topK        int
	docsURL     string
	dbURL       string
	ollamaURL   string
	model       string
	useLLM      bool
	streaming   bool
	serve       bool
	port        string
	temperature float64
	maxTokens   int
}

type app struct {
	opts        options
	cfg         *cfgPkg.Config
	engine      *rag.Engine
	generator   answer.Generator
	vectorStore *store.VectorStore
	chatEngine  *llm.ChatEngine
	scanner     *bufio.Scanner
}

func main() {
	opts, cfg := parseFlags()

	if err := run(opts, cfg); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() (options, *cfgPkg.Config) {
	var opts options

	flag.StringVar(&opts.configPath, "config", "", "Path to config file")
	flag.StringVar(&opts.query, "query", "", "Query to answer")
	flag.BoolVar(&opts.debug, "debug", false, "Enable debug mode")
	flag.BoolVar(&opts.test, "test", false, "Run test queries")
	flag.StringVar(&opts.docsDir, "docs-dir", "docs", "Documents directory")
	flag.IntVar(&opts.topK, "k", 3, "Number of passages to retrieve")
	flag.StringVar(&opts.docsURL, "docs-url", "", "Documentation URL to scrape into the corpus")
	flag.StringVar(&opts.dbURL, "db-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string for pgvector retrieval")
	flag.StringVar(&opts.ollamaURL, "ollama-url", os.Getenv("OLLAMA_BASE_URL"), "Ollama server URL")
	flag.StringVar(&opts.model, "model", "", "LLM model for generative answers")
	flag.BoolVar(&opts.useLLM, "llm", false, "Generate answers with the LLM instead of extraction")
	flag.BoolVar(&opts.streaming, "stream", true, "Enable streaming LLM responses")
	flag.BoolVar(&opts.serve, "serve", false, "Run the WebSocket server instead of the CLI")
	flag.StringVar(&opts.port, "port", os.Getenv("PORT"), "WebSocket server port")
	flag.Float64Var(&opts.temperature, "temperature", 0, "Set the LLM temperature")
	flag.IntVar(&opts.maxTokens, "max-tokens", 0, "Maximum tokens for LLM response")
	flag.Parse()

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := cfgPkg.LoadConfig(opts.configPath)
	if err != nil {
		log.Fatal(err)
	}

	// Config file supplies values for flags the user did not set
	if !set["docs-dir"] {
		opts.docsDir = cfg.Corpus.DocsDir
	}
	if !set["k"] {
		opts.topK = cfg.Retrieval.TopK
	}
	if !set["db-url"] && opts.dbURL == "" {
		opts.dbURL = cfg.Database.URL
	}
	if !set["ollama-url"] && opts.ollamaURL == "" {
		opts.ollamaURL = cfg.LLM.BaseURL
	}
	if !set["model"] {
		opts.model = cfg.LLM.Model
	}
	if !set["stream"] {
		opts.streaming = cfg.UI.Streaming
	}
	if !set["temperature"] {
		opts.temperature = cfg.LLM.Temperature
	}
	if !set["max-tokens"] {
		opts.maxTokens = cfg.LLM.MaxTokens
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %v", e)
		}
		os.Exit(1)
	}

	return opts, cfg
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("items"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(opts options, cfg *cfgPkg.Config) error {
	a := &app{
		opts: opts,
		cfg:  cfg,
		engine: rag.NewWithConfig(rag.EngineConfig{
			DocsDir:          opts.docsDir,
			MaxPassageWords:  cfg.Processor.MaxPassageWords,
			MinSentenceWords: cfg.Processor.MinSentenceWords,
			TopK:             opts.topK,
			MinScore:         cfg.Retrieval.MinScore,
			Debug:            opts.debug,
		}),
		generator: answer.NewWithConfig(answer.GeneratorConfig{
			MinScore: cfg.Retrieval.MinScore,
		}),
		scanner: bufio.NewScanner(os.Stdin),
	}

	// Scrape remote documentation into the corpus first, if requested
	if opts.docsURL != "" {
		if err := a.scrapeIntoCorpus(opts.docsURL); err != nil {
			return err
		}
	}

	if err := a.initialize(); err != nil {
		return err
	}
	defer func() {
		if a.vectorStore != nil {
			a.vectorStore.Close()
		}
	}()

	if opts.useLLM {
		chatEngine, err := llm.NewWithConfig(llm.ChatConfig{
			Model:       opts.model,
			MaxTokens:   opts.maxTokens,
			BaseURL:     opts.ollamaURL,
			Temperature: opts.temperature,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize chat engine: %v", err)
		}
		a.chatEngine = chatEngine
	}

	if opts.serve {
		ws, err := server.NewWSServer(server.Config{
			TopK:      opts.topK,
			Streaming: opts.streaming,
		}, a.engine, a.chatEngine)
		if err != nil {
			return err
		}
		return ws.ListenAndServe(opts.port)
	}

	switch {
	case opts.test:
		a.runTests()
	case opts.query != "":
		a.answerQuery(opts.query)
	default:
		a.interactive()
	}

	return nil
}

// initialize ingests the corpus, builds the index, and wires the
// optional vector store.
func (a *app) initialize() error {
	color.Cyan("Initializing RAG system (docs dir: %s)", a.opts.docsDir)

	nDocs, nPassages, err := a.engine.Ingest()
	if err != nil {
		return err
	}
	fmt.Printf("Found %d documents\n", nDocs)
	fmt.Printf("Created %d passages from %d documents\n", nPassages, nDocs)

	if err := a.engine.BuildIndex(); err != nil {
		return err
	}
	fmt.Printf("Indexed %d passages\n", nPassages)

	if a.opts.dbURL == "" {
		return nil
	}

	// Re-initialization after a scrape replaces the store
	if a.vectorStore != nil {
		a.vectorStore.Close()
		a.vectorStore = nil
	}

	vectorStore, err := store.NewWithConfig(store.VectorStoreConfig{
		ConnString: a.opts.dbURL,
		TableName:  a.cfg.Database.TableName,
		VectorDim:  a.cfg.Database.VectorDim,
		BatchSize:  a.cfg.Database.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize vector store: %v", err)
	}
	a.vectorStore = vectorStore

	passages := a.engine.Passages()
	storageBar := getProgressBar(len(passages), "💾 Storing in vector database...")

	batchSize := a.cfg.Database.BatchSize
	startTime := time.Now()
	for i := 0; i < len(passages); i += batchSize {
		end := i + batchSize
		if end > len(passages) {
			end = len(passages)
		}
		batch := passages[i:end]

		if err := vectorStore.Store(batch); err != nil {
			return fmt.Errorf("failed to store batch: %v", err)
		}
		storageBar.Add(len(batch))

		elapsed := time.Since(startTime).Seconds()
		rate := float64(i+len(batch)) / elapsed
		storageBar.Describe(color.BlueString(
			"💾 Storing in vector database... (%.1f passages/sec)", rate))
	}
	storageBar.Finish()
	color.Green("\n✓ Storage complete\n")

	return nil
}

func (a *app) scrapeIntoCorpus(docsURL string) error {
	color.Blue("\nScraping %s into %s\n", docsURL, a.opts.docsDir)

	var processedCount int32
	s, err := scraper.NewWithConfig(scraper.ScraperConfig{
		BaseURL:   docsURL,
		MaxDepth:  a.cfg.Scraper.MaxDepth,
		RateLimit: a.cfg.Scraper.RateLimit,
		OnProgress: func(url string) {
			atomic.AddInt32(&processedCount, 1)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize scraper: %v", err)
	}

	scrapingBar := getProgressBar(-1, "📄 Scraping documentation...")
	done := make(chan struct{})
	startTime := time.Now()

	go func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(100 * time.Millisecond):
				count := atomic.LoadInt32(&processedCount)
				scrapingBar.Set(int(count))
				if count > 0 {
					elapsed := time.Since(startTime).Seconds()
					rate := float64(count) / elapsed
					scrapingBar.Describe(color.BlueString(
						"📄 Scraping documentation... (%.1f pages/sec)", rate))
				}
			}
		}
	}()

	docs, err := s.Scrape(docsURL)
	close(done)
	scrapingBar.Finish()
	if err != nil {
		return fmt.Errorf("failed to scrape documents: %v", err)
	}
	color.Green("\n✓ Scraped %d pages\n", len(docs))

	saved, err := s.SaveTo(a.opts.docsDir, docs)
	if err != nil {
		return err
	}
	color.Green("✓ Saved %d pages into %s\n", len(saved), a.opts.docsDir)

	return nil
}

func (a *app) runTests() {
	color.Cyan("\nRunning test queries")
	for _, query := range testQueries {
		a.answerQuery(query)
	}
}

func (a *app) interactive() {
	color.Cyan("\nAsk questions about your documents (type 'exit' to quit, 'test' to run tests)")

	prompt := color.New(color.FgGreen).PrintfFunc()
	urlRegex := regexp.MustCompile(`https?://[^\s]+`)

	for {
		prompt("\nEnter your question: ")
		if !a.scanner.Scan() {
			break
		}

		query := strings.TrimSpace(a.scanner.Text())
		switch {
		case query == "":
			continue
		case strings.EqualFold(query, "exit"):
			fmt.Println("Goodbye!")
			return
		case strings.EqualFold(query, "test"):
			a.runTests()
			continue
		}

		// A pasted URL extends the corpus before answering
		if url := urlRegex.FindString(query); url != "" {
			if err := a.scrapeIntoCorpus(url); err != nil {
				color.Red("Failed to scrape URL: %v\n", err)
				continue
			}
			if err := a.initialize(); err != nil {
				color.Red("Failed to rebuild index: %v\n", err)
				continue
			}
			if strings.TrimSpace(query) == url {
				continue
			}
		}

		a.answerQuery(query)
	}
}

func (a *app) answerQuery(query string) {
	color.Cyan("\nQuery: %s", query)

	if a.chatEngine != nil {
		a.answerWithLLM(query)
		return
	}

	result, err := a.answerExtractive(query)
	if err != nil {
		color.Red("Error: %v\n", err)
		return
	}

	color.Green("\nAnswer (based on retrieved documents):")
	fmt.Println(result.text)
	color.Blue("\nSources: %s", strings.Join(result.sources, ", "))
	fmt.Println(strings.Repeat("-", 80))
}

type answerResult struct {
	text    string
	sources []string
}

// retrieve goes through the vector store when one is configured,
// otherwise the local TF-IDF index.
func (a *app) retrieve(query string, k int) ([]models.ScoredPassage, error) {
	if a.vectorStore != nil {
		return a.vectorStore.Search(query, k)
	}
	return a.engine.Retrieve(query, k)
}

func (a *app) answerExtractive(query string) (answerResult, error) {
	if a.vectorStore != nil {
		retrieved, err := a.vectorStore.Search(query, a.opts.topK)
		if err != nil {
			return answerResult{}, err
		}
		result, err := a.generator.Generate(query, retrieved)
		if err != nil {
			return answerResult{}, err
		}
		return answerResult{text: result.Text, sources: result.Sources}, nil
	}

	result, err := a.engine.Answer(query, a.opts.topK)
	if err != nil {
		return answerResult{}, err
	}
	return answerResult{text: result.Text, sources: result.Sources}, nil
}

func (a *app) answerWithLLM(query string) {
	retrieved, err := a.retrieve(query, a.opts.topK)
	if err != nil {
		color.Red("Error querying documents: %v\n", err)
		return
	}

	assistantPrompt := color.New(color.FgCyan).PrintfFunc()

	if a.opts.streaming {
		stream, err := a.chatEngine.ChatStream(query, retrieved)
		if err != nil {
			color.Red("Error: %v\n", err)
			return
		}

		responseSpinner := getSpinner("🤖 Generating response...")
		firstChunk := true

		fmt.Print("\n")
		assistantPrompt("Answer: ")

		for chunk := range stream {
			if strings.HasPrefix(chunk, "Error:") {
				responseSpinner.Finish()
				color.Red("\n%s", chunk)
				return
			}
			if firstChunk {
				responseSpinner.Finish()
				firstChunk = false
			}
			fmt.Print(chunk)
		}
		if firstChunk {
			responseSpinner.Finish()
		}
		fmt.Print("\n")
	} else {
		responseSpinner := getSpinner("🤖 Generating response...")
		result, err := a.chatEngine.Chat(query, retrieved)
		responseSpinner.Finish()
		if err != nil {
			color.Red("Error: %v\n", err)
			return
		}
		assistantPrompt("\nAnswer: %s\n", result.Text)
	}

	seen := make(map[string]bool)
	var sources []string
	for _, result := range retrieved {
		if !seen[result.Passage.Source] {
			seen[result.Passage.Source] = true
			sources = append(sources, result.Passage.Source)
		}
	}
	color.Blue("\nSources: %s", strings.Join(sources, ", "))
	fmt.Println(strings.Repeat("-", 80))
}
