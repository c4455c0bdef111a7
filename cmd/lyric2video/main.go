package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ivlev/lyric2video/internal/config"
	"github.com/ivlev/lyric2video/internal/director"
	"github.com/ivlev/lyric2video/internal/engine"
	"github.com/ivlev/lyric2video/internal/system"
	"github.com/ivlev/lyric2video/internal/video"
)

// Version is set at build time via -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	// Создаем нужные директории, если их нет
	dirs := []string{"input/scenes", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	configPtr := flag.String("config", "", "Путь к YAML-конфигу запуска")
	scenePtr := flag.String("scene", "", "Путь к сцене YAML/JSON (по умолчанию: самый свежий файл в input/scenes/)")
	outputPtr := flag.String("output", "", "Папка для кадров (если пусто, генерируется автоматически в output/)")
	widthPtr := flag.Int("width", 1280, "Ширина")
	heightPtr := flag.Int("height", 720, "Высота")
	presetPtr := flag.String("preset", "", "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	fpsPtr := flag.Int("fps", 30, "FPS экспорта")
	tierPtr := flag.String("tier", "auto", "Уровень устройства: auto, mobile, tablet, desktop, high-end")
	densityPtr := flag.Float64("density", 1, "Множитель плотности частиц")
	fromPtr := flag.Float64("from", 0, "Начало экспорта (сек)")
	toPtr := flag.Float64("to", 0, "Конец экспорта (сек, 0 - до конца)")
	detectorPtr := flag.String("detector", "auto", "Детектор хуков: auto, explicit, repetition")
	dumpPtr := flag.Bool("dump-timeline", false, "Сохранить запеченный таймлайн в YAML")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Потоки кодирования кадров")
	statsPtr := flag.Bool("stats", false, "Показать статистику экспорта")
	timelinePtr := flag.String("timeline", "", "Экспортировать ранее сохраненный таймлайн без запекания")
	savePtr := flag.Bool("save-scene", false, "Сохранить нормализованную сцену в input/scenes/")

	flag.Parse()

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка конфига: %v", err)
		}
		cfg = loaded
	}

	// Флаги, указанные явно, важнее конфига
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scene":
			cfg.ScenePath = *scenePtr
		case "output":
			cfg.OutputDir = *outputPtr
		case "width":
			cfg.Width = *widthPtr
		case "height":
			cfg.Height = *heightPtr
		case "fps":
			cfg.FPS = *fpsPtr
		case "tier":
			cfg.Tier = *tierPtr
		case "density":
			cfg.DensityMultiplier = *densityPtr
		case "from":
			cfg.From = *fromPtr
		case "to":
			cfg.To = *toPtr
		case "detector":
			cfg.Detector = *detectorPtr
		case "dump-timeline":
			cfg.DumpTimeline = *dumpPtr
		case "workers":
			cfg.Workers = *workersPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		}
	})
	if *presetPtr != "" {
		if err := cfg.ApplyPreset(*presetPtr); err != nil {
			log.Fatalf("[-] Ошибка: %v", err)
		}
	}
	cfg.BuildVersion = Version
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка параметров: %v", err)
	}

	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits(cfg.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tier := system.ResolveTier(cfg.Tier)
	fmt.Printf("[*] lyric2video %s | %dx%d @ %d fps | уровень %s (до %d частиц)\n",
		cfg.BuildVersion, cfg.Width, cfg.Height, cfg.FPS, tier, tier.Ceiling())

	var tl *engine.Timeline
	var name string
	if *timelinePtr != "" {
		loaded, err := engine.ReadTimeline(*timelinePtr)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения таймлайна: %v", err)
		}
		tl, name = loaded, filepath.Base(*timelinePtr)
		fmt.Printf("[*] Загружен таймлайн: %d кадров\n", len(tl.Keyframes))
	} else {
		handle, scenePath := bakeScene(ctx, cfg, *savePtr)
		defer handle.Release()
		tl, name = handle.Timeline(), filepath.Base(scenePath)
	}

	title := tl.Title
	if title == "" {
		title = name
	}

	if cfg.DumpTimeline {
		os.MkdirAll(cfg.OutputDir, 0755)
		dumpPath := director.TimelinePath(cfg.OutputDir, title)
		if err := engine.WriteTimeline(tl, dumpPath); err != nil {
			log.Printf("[!] Не удалось сохранить таймлайн: %v", err)
		} else {
			fmt.Printf("[*] Таймлайн сохранен: %s\n", dumpPath)
		}
	}

	outDir := *outputPtr
	if outDir == "" {
		slug := director.Slug(title)
		if slug == "" {
			slug = "scene"
		}
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		outDir = filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_%s", slug, timestamp))
	}

	exporter := video.NewExporter(video.Options{
		FPS:               cfg.FPS,
		Width:             cfg.Width,
		Height:            cfg.Height,
		From:              cfg.From,
		To:                cfg.To,
		Workers:           cfg.Workers,
		Tier:              tier,
		DensityMultiplier: cfg.DensityMultiplier,
		Progress: func(done, total int) {
			fmt.Printf("\r[*] Кадры: %d/%d", done, total)
		},
	})
	n, err := exporter.Export(ctx, tl, outDir)
	fmt.Println()
	if err != nil {
		log.Fatalf("[-] Ошибка экспорта: %v", err)
	}

	if cfg.ShowStats {
		st := exporter.Stats()
		fps := 0.0
		if st.Elapsed > 0 {
			fps = float64(st.Frames) / st.Elapsed.Seconds()
		}
		fmt.Printf("[*] Статистика: %d кадров за %v (%.1f кадр/с), пик частиц %d\n",
			st.Frames, st.Elapsed.Round(time.Millisecond), fps, st.PeakParticles)
	}

	fmt.Printf("[+++] Успех! %d кадров в %s\n", n, outDir)
}

// bakeScene loads the configured scene and bakes it through the cache
func bakeScene(ctx context.Context, cfg config.Config, save bool) (*engine.Handle, string) {
	scenePath := cfg.ScenePath
	if scenePath == "" {
		latest, err := director.FindLatestScene("input/scenes")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите сцену в input/scenes/", err)
		}
		scenePath = latest
		fmt.Printf("[*] Выбрана сцена: %s\n", scenePath)
	}

	scene, err := director.ReadScene(scenePath)
	if err != nil {
		log.Fatalf("[-] Ошибка чтения сцены: %v", err)
	}

	if save {
		clean := director.Sanitize(*scene)
		savePath := director.GenerateScenePath("input/scenes")
		if err := director.WriteScene(&clean, savePath); err != nil {
			log.Printf("[!] Не удалось сохранить сцену: %v", err)
		} else {
			fmt.Printf("[*] Нормализованная сцена сохранена: %s\n", savePath)
		}
	}

	bakeStart := time.Now()
	cache := engine.NewCache()
	handle, err := cache.Acquire(ctx, *scene, engine.Options{
		Width:      cfg.Width,
		Height:     cfg.Height,
		ChunkTicks: cfg.ChunkTicks,
		Detector:   cfg.Detector,
		Progress: func(p int) {
			fmt.Printf("\r[*] Запекание: %3d%%", p)
		},
	})
	fmt.Println()
	if err != nil {
		log.Fatalf("[-] Ошибка запекания: %v", err)
	}
	fmt.Printf("[*] Запечено %d кадров за %v\n", len(handle.Timeline().Keyframes), time.Since(bakeStart).Round(time.Millisecond))
	return handle, scenePath
}
