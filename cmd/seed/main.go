// Command seed fills the configured store with demo users, skills and swap
// requests. It goes through the service layer, so passwords are hashed and
// defaults applied exactly as for API clients.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"

	"github.com/iliyamo/skillswap/internal/config"
	"github.com/iliyamo/skillswap/internal/model"
	"github.com/iliyamo/skillswap/internal/observability"
	"github.com/iliyamo/skillswap/internal/service"
	"github.com/iliyamo/skillswap/internal/storage"
	"github.com/iliyamo/skillswap/internal/store"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "password123"

var skillNames = map[string][]string{
	"Web Development":    {"React", "Go APIs", "CSS Layout", "TypeScript"},
	"Mobile Development": {"Swift", "Kotlin", "Flutter"},
	"Design":             {"Figma", "Logo Design", "UX Research"},
	"Data Science":       {"Pandas", "SQL", "Statistics"},
	"Languages":          {"Spanish", "Japanese", "French"},
	"Music":              {"Guitar Basics", "Piano", "Music Theory"},
	"Cooking":            {"Bread Baking", "Thai Cooking", "Knife Skills"},
	"Fitness":            {"Yoga", "Running Form", "Strength Training"},
	"Photography":        {"Lightroom", "Portrait Lighting"},
}

func main() {
	nUsers := flag.Int("users", 10, "number of users to create")
	perUser := flag.Int("skills", 2, "offered and wanted skills per user")
	seed := flag.Int64("seed", 0, "random seed (0 = time based)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	log := observability.NewLogger(cfg.Env, os.Stdout)
	slog.SetDefault(log)

	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("STORE_DRIVER=memory: seeded data is gone when this command exits")
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	gofakeit.Seed(*seed)

	repos, closeStore, err := store.Open(cfg)
	if err != nil {
		log.Error("store init failed", "err", err)
		os.Exit(1)
	}
	defer closeStore()

	users := service.NewUserService(repos.Users, storage.NewMemory(""), service.UserOptions{BcryptCost: cfg.BcryptCost})
	skills := service.NewSkillService(repos.Skills, repos.Users)
	swaps := service.NewSwapService(repos.Swaps, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	type seeded struct {
		user    *model.User
		offered []*model.Skill
	}
	var all []seeded
	for i := 0; i < *nUsers; i++ {
		privacy := string(model.PrivacyPublic)
		if gofakeit.Number(1, 10) == 1 {
			privacy = string(model.PrivacyPrivate)
		}
		u, err := users.Register(ctx, service.RegisterInput{
			Username:     gofakeit.Name(),
			Email:        gofakeit.Email(),
			Password:     DemoPassword,
			Location:     gofakeit.City() + ", " + gofakeit.Country(),
			Privacy:      privacy,
			Availability: gofakeit.RandomString([]string{"weekends", "evenings", "weekdays", model.DefaultAvailability}),
		})
		if err != nil {
			log.Warn("skip user", "err", err)
			continue
		}
		s := seeded{user: u}
		for j := 0; j < *perUser; j++ {
			if sk, err := skills.Add(ctx, model.SkillOffered, randomSkill(u.ID)); err == nil {
				s.offered = append(s.offered, sk)
			}
			if _, err := skills.Add(ctx, model.SkillWanted, randomSkill(u.ID)); err != nil {
				log.Warn("skip wanted skill", "err", err)
			}
		}
		all = append(all, s)
	}

	nSwaps := 0
	for i := 1; i < len(all); i++ {
		from, to := all[i-1], all[i]
		if len(from.offered) == 0 || len(to.offered) == 0 {
			continue
		}
		w, err := swaps.Create(ctx, service.CreateSwapInput{
			RequesterID:    from.user.ID,
			ReceiverID:     to.user.ID,
			OfferedSkillID: from.offered[0].ID,
			WantedSkillID:  to.offered[0].ID,
			Message:        gofakeit.Sentence(8),
		})
		if err != nil {
			log.Warn("skip swap", "err", err)
			continue
		}
		if i%3 == 0 {
			status := gofakeit.RandomString([]string{"accepted", "declined", "completed"})
			_, _ = swaps.UpdateStatus(ctx, w.ID, status, to.user.ID)
		}
		nSwaps++
	}
	log.Info("seed complete", "users", len(all), "swaps", nSwaps, "password", DemoPassword, "seed", *seed)
}

// randomSkill picks a category from the fixed list. Categories without
// demo names get a made-up skill and no category, so they land in Other.
func randomSkill(userID string) service.AddSkillInput {
	category := model.Categories[gofakeit.Number(0, len(model.Categories)-1)]
	names, ok := skillNames[category]
	if !ok {
		return service.AddSkillInput{UserID: userID, SkillName: gofakeit.HipsterWord(), Description: gofakeit.Sentence(10)}
	}
	return service.AddSkillInput{
		UserID:      userID,
		SkillName:   gofakeit.RandomString(names),
		Description: gofakeit.Sentence(10),
		Category:    category,
	}
}
