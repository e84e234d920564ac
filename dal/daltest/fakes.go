// Package daltest provides in-memory DAOs for handler tests.
package daltest

import (
	"context"
	"sort"
	"sync"
	"time"

	"calorie-tracker/dal"
	"calorie-tracker/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FoodDAO struct {
	mu     sync.Mutex
	nextID int64
	foods  []models.FoodEntry
	water  []models.WaterEntry
	Now    func() time.Time
	Err    error
}

func NewFoodDAO() *FoodDAO {
	return &FoodDAO{Now: time.Now}
}

func (f *FoodDAO) today() models.Date {
	return models.DateOf(f.Now())
}

func (f *FoodDAO) GetLifetimeFoodEntries(_ context.Context, userID string) ([]models.FoodEntry, error) {
	return f.filterFood(userID, func(models.FoodEntry) bool { return true })
}

func (f *FoodDAO) GetFoodEntriesInRange(_ context.Context, userID string, start, finish models.Date) ([]models.FoodEntry, error) {
	return f.filterFood(userID, func(e models.FoodEntry) bool {
		return !e.Date.Before(start.Time) && !e.Date.After(finish.Time)
	})
}

func (f *FoodDAO) filterFood(userID string, keep func(models.FoodEntry) bool) ([]models.FoodEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	out := []models.FoodEntry{}
	for _, e := range f.foods {
		if e.UserID == userID && keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *FoodDAO) AddFoodItem(_ context.Context, userID string, entry models.FoodEntry) (models.FoodEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return models.FoodEntry{}, f.Err
	}
	f.nextID++
	entry.ID = f.nextID
	entry.UserID = userID
	entry.Date = f.today()
	f.foods = append(f.foods, entry)
	return entry, nil
}

func (f *FoodDAO) RemoveFoodItem(_ context.Context, userID string, entryID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	for i, e := range f.foods {
		if e.ID == entryID && e.UserID == userID {
			f.foods = append(f.foods[:i], f.foods[i+1:]...)
			return nil
		}
	}
	return dal.ErrNotFound
}

func (f *FoodDAO) AddWaterEntry(_ context.Context, userID string) (models.Date, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return models.Date{}, f.Err
	}
	today := f.today()
	f.water = append(f.water, models.WaterEntry{UserID: userID, Date: today})
	return today, nil
}

func (f *FoodDAO) RemoveWaterEntry(_ context.Context, userID string, date models.Date) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	for i := len(f.water) - 1; i >= 0; i-- {
		if w := f.water[i]; w.UserID == userID && w.Date.Equal(date.Time) {
			f.water = append(f.water[:i], f.water[i+1:]...)
			return nil
		}
	}
	return dal.ErrNotFound
}

func (f *FoodDAO) GetWaterCountByDate(_ context.Context, userID string, date models.Date) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	count := 0
	for _, w := range f.water {
		if w.UserID == userID && w.Date.Equal(date.Time) {
			count++
		}
	}
	return count, nil
}

func (f *FoodDAO) GetWaterCountsInRange(_ context.Context, userID string, start, finish models.Date) ([]models.WaterCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	byDay := map[models.Date]int{}
	for _, w := range f.water {
		if w.UserID == userID && !w.Date.Before(start.Time) && !w.Date.After(finish.Time) {
			byDay[w.Date]++
		}
	}
	out := []models.WaterCount{}
	for day, n := range byDay {
		out = append(out, models.WaterCount{Date: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

type UserDAO struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]models.User
	Sessions []models.Session
	Err      error
}

func NewUserDAO() *UserDAO {
	return &UserDAO{users: map[primitive.ObjectID]models.User{}}
}

func (u *UserDAO) FindByEmail(_ context.Context, email string) (models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return models.User{}, u.Err
	}
	for _, user := range u.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, dal.ErrNotFound
}

func (u *UserDAO) FindByID(_ context.Context, userID string) (models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return models.User{}, u.Err
	}
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.User{}, dal.ErrNotFound
	}
	user, ok := u.users[id]
	if !ok {
		return models.User{}, dal.ErrNotFound
	}
	return user, nil
}

func (u *UserDAO) Create(_ context.Context, user models.User) (models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return models.User{}, u.Err
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	u.users[user.ID] = user
	return user, nil
}

func (u *UserDAO) CreateSession(_ context.Context, session models.Session) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Sessions = append(u.Sessions, session)
	return nil
}

type ProfileDAO struct {
	mu       sync.Mutex
	profiles map[string]models.Profile
	Err      error
}

func NewProfileDAO() *ProfileDAO {
	return &ProfileDAO{profiles: map[string]models.Profile{}}
}

func (p *ProfileDAO) GetProfile(_ context.Context, userID string) (models.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return models.Profile{}, p.Err
	}
	profile, ok := p.profiles[userID]
	if !ok {
		return models.Profile{}, dal.ErrNotFound
	}
	return profile, nil
}

func (p *ProfileDAO) SaveProfile(_ context.Context, userID string, profile models.Profile) (models.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return models.Profile{}, p.Err
	}
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.Profile{}, err
	}
	profile.UserID = id
	profile.UpdatedAt = time.Now().UTC()
	p.profiles[userID] = profile
	return profile, nil
}

var (
	_ dal.FoodDAO    = (*FoodDAO)(nil)
	_ dal.UserDAO    = (*UserDAO)(nil)
	_ dal.ProfileDAO = (*ProfileDAO)(nil)
)
