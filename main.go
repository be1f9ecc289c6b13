package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leeineian/navi/attrib"
	"github.com/leeineian/navi/chat"
	"github.com/leeineian/navi/home"
	"github.com/leeineian/navi/msgcache"
	"github.com/leeineian/navi/proc"
	"github.com/leeineian/navi/reminder"
	"github.com/leeineian/navi/settings"
	"github.com/leeineian/navi/sys"
	"github.com/leeineian/navi/track"
)

const pidFile = ".bot.pid"

func main() {
	// LogFatal panics so deferred cleanup runs
	defer func() {
		if r := recover(); r != nil {
			if msg, ok := r.(string); ok {
				fmt.Fprintf(os.Stderr, "\n[FATAL] %s\n", msg)
				os.Exit(1)
			}
			panic(r)
		}
	}()

	silent := flag.Bool("silent", false, "Disable all log output")
	skipReg := flag.Bool("skip-reg", false, "Skip command registration")
	flag.Parse()

	sys.InitLogger(*silent, true)

	cfg, err := sys.LoadConfig()
	if err != nil {
		sys.LogFatal(sys.MsgConfigFailedToLoad, err)
	}

	sys.LogInfo(sys.MsgBotStarting, sys.GetProjectName())

	release, err := lockPIDFile(pidFile)
	if err != nil {
		sys.LogFatal("Failed to lock PID file: %v", err)
	}
	defer release()

	if err := run(cfg, *silent, *skipReg); err != nil {
		sys.LogFatal(sys.MsgGenericError, err)
	}
}

func run(cfg *sys.Config, silent bool, skipReg bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	sys.SetAppContext(ctx)

	db, err := sys.OpenDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer sys.CloseDatabase(db)

	cache := msgcache.New(msgcache.WithGameBot(cfg.GameBotID))
	reminders := reminder.NewStore(db)
	profiles := settings.NewStore(db)

	client, err := sys.CreateClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create Discord client: %w", err)
	}
	defer client.Close(context.Background())

	rest := chat.RestClient{Rest: client.Rest}
	resolver := attrib.NewResolver(cache, chat.CacheMembers{Caches: client.Caches, Rest: client.Rest})

	track.New(track.Config{
		GameBotID:       cfg.GameBotID,
		CommandPrefixes: cfg.CommandPrefixes,
		StartPhrases:    cfg.StartPhrases,
	}, cache, resolver, reminders, profiles, rest).Register()

	proc.Register(cfg, cache,
		proc.NewDelivery(reminders, rest, cfg.ReminderSendRate),
		proc.NewStatusRotator(chat.GatewayPresence{Client: client}, reminders, cache),
	)

	if err := home.Register(home.Deps{
		Reminders: reminders,
		Settings:  profiles,
		Cache:     cache,
		Config:    cfg,
	}); err != nil {
		return err
	}

	if err := client.OpenGateway(ctx); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}

	if !skipReg {
		if err := sys.RegisterCommands(ctx, client, db, cfg.GuildID); err != nil {
			sys.LogError(sys.MsgBotRegisterFail, err)
		}
	} else {
		sys.LogInfo("Skipping command registration as requested.")
	}

	<-ctx.Done()
	if !silent {
		fmt.Println()
	}

	sys.LogInfo("Shutting down all daemons...")
	sys.ShutdownDaemons()

	if botUser, ok := client.Caches.SelfUser(); ok {
		sys.LogInfo(sys.MsgBotShutdown, botUser.Username)
	} else {
		sys.LogInfo(sys.MsgBotShutdown, sys.GetProjectName())
	}
	return nil
}

// lockPIDFile takes an exclusive lock on path, terminating any older instance that holds it,
// and writes the current PID. The returned func releases the lock and removes the file.
func lockPIDFile(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		err = syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			break
		}
		if err != syscall.EWOULDBLOCK {
			_ = f.Close()
			return nil, err
		}

		var oldPid int
		_, _ = f.Seek(0, 0)
		if _, scanErr := fmt.Fscanf(f, "%d", &oldPid); scanErr != nil || oldPid == os.Getpid() {
			<-ticker.C
			continue
		}

		process, procErr := os.FindProcess(oldPid)
		if procErr != nil {
			<-ticker.C
			continue
		}

		sys.LogInfo(sys.MsgBotKillingOld, oldPid)
		terminate(process, ticker)
		sys.LogInfo(sys.MsgBotOldTerminated)
	}

	_ = f.Truncate(0)
	_, _ = f.Seek(0, 0)
	_, _ = fmt.Fprintf(f, "%d", os.Getpid())
	_ = f.Sync()

	return func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		_ = f.Close()
		_ = os.Remove(path)
	}, nil
}

// terminate sends SIGTERM and escalates to SIGKILL after five seconds.
func terminate(process *os.Process, ticker *time.Ticker) {
	_ = process.Signal(syscall.SIGTERM)
	if waitExit(process, ticker, 5*time.Second) {
		return
	}

	sys.LogWarn("Old process %d is stubborn. Sending SIGKILL...", process.Pid)
	_ = process.Signal(syscall.SIGKILL)
	if !waitExit(process, ticker, 2*time.Second) {
		sys.LogWarn("Process %d still exists after SIGKILL", process.Pid)
	}
}

func waitExit(process *os.Process, ticker *time.Ticker, limit time.Duration) bool {
	timeout := time.After(limit)
	for {
		select {
		case <-ticker.C:
			if err := process.Signal(syscall.Signal(0)); err != nil {
				return true
			}
		case <-timeout:
			return false
		}
	}
}
