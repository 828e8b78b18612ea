// Package seed loads demo users, posts, comments and votes.
package seed

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/go-extras/go-kit/must"
	"github.com/yukikurage/forum/internal/models"
	"github.com/yukikurage/forum/internal/repository"
	"github.com/yukikurage/forum/internal/services"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed fixtures.yaml
var fixturesFS embed.FS

type UserFixture struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type PostFixture struct {
	Key         string    `yaml:"key"`
	Title       string    `yaml:"title"`
	Link        string    `yaml:"link"`
	Description string    `yaml:"description"`
	Subgroup    string    `yaml:"subgroup"`
	Creator     string    `yaml:"creator"`
	Timestamp   time.Time `yaml:"timestamp"`
}

type CommentFixture struct {
	Post        string    `yaml:"post"`
	Creator     string    `yaml:"creator"`
	Description string    `yaml:"description"`
	Timestamp   time.Time `yaml:"timestamp"`
}

type VoteFixture struct {
	User  string `yaml:"user"`
	Post  string `yaml:"post"`
	Value int    `yaml:"value"`
}

// Fixtures is a complete data set. Posts are referenced by key, users by
// username.
type Fixtures struct {
	Users    []UserFixture    `yaml:"users"`
	Posts    []PostFixture    `yaml:"posts"`
	Comments []CommentFixture `yaml:"comments"`
	Votes    []VoteFixture    `yaml:"votes"`
}

// Report counts the rows a Load created. Votes counts every vote applied.
type Report struct {
	Users    int `json:"users" yaml:"users"`
	Posts    int `json:"posts" yaml:"posts"`
	Comments int `json:"comments" yaml:"comments"`
	Votes    int `json:"votes" yaml:"votes"`
}

// Default returns the bundled demo data.
func Default() *Fixtures {
	return must.Must(Parse(must.Must(fixturesFS.ReadFile("fixtures.yaml"))))
}

// Parse decodes fixtures and checks that every reference resolves.
func Parse(data []byte) (*Fixtures, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var fx Fixtures
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("seed: failed to decode fixtures: %w", err)
	}
	if err := fx.check(); err != nil {
		return nil, err
	}
	return &fx, nil
}

func (fx *Fixtures) check() error {
	users := make(map[string]bool, len(fx.Users))
	for _, u := range fx.Users {
		if u.Username == "" {
			return errors.New("seed: user without username")
		}
		users[u.Username] = true
	}

	posts := make(map[string]bool, len(fx.Posts))
	for _, p := range fx.Posts {
		if p.Key == "" || posts[p.Key] {
			return fmt.Errorf("seed: post key %q is empty or repeated", p.Key)
		}
		if !users[p.Creator] {
			return fmt.Errorf("seed: post %q references unknown user %q", p.Key, p.Creator)
		}
		posts[p.Key] = true
	}

	for _, c := range fx.Comments {
		if !posts[c.Post] || !users[c.Creator] {
			return fmt.Errorf("seed: comment references unknown post %q or user %q", c.Post, c.Creator)
		}
	}

	for _, v := range fx.Votes {
		if !posts[v.Post] || !users[v.User] {
			return fmt.Errorf("seed: vote references unknown post %q or user %q", v.Post, v.User)
		}
		if v.Value < models.VoteDown || v.Value > models.VoteUp {
			return fmt.Errorf("seed: vote by %q on %q has value %d", v.User, v.Post, v.Value)
		}
	}
	return nil
}

// Load writes fx in one transaction. Users are matched by username, posts
// by creator and title, comments by post, creator and text; existing rows
// are left as they are. Passwords are stored bcrypt-hashed.
func Load(ctx context.Context, db *gorm.DB, fx *Fixtures) (Report, error) {
	var report Report

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userIDs := make(map[string]uint64, len(fx.Users))
		for _, u := range fx.Users {
			user, created, err := ensureUser(tx, u)
			if err != nil {
				return err
			}
			if created {
				report.Users++
			}
			userIDs[u.Username] = user.ID
		}

		postIDs := make(map[string]uint64, len(fx.Posts))
		for _, p := range fx.Posts {
			post := models.Post{
				Title:       p.Title,
				Link:        p.Link,
				Description: p.Description,
				Subgroup:    p.Subgroup,
				CreatorID:   userIDs[p.Creator],
				Timestamp:   p.Timestamp,
			}
			created, err := firstOrCreate(tx.Where("creator_id = ? AND title = ?", post.CreatorID, post.Title), &post)
			if err != nil {
				return fmt.Errorf("seed: post %q: %w", p.Key, err)
			}
			if created {
				report.Posts++
			}
			postIDs[p.Key] = post.ID
		}

		for _, c := range fx.Comments {
			comment := models.Comment{
				PostID:      postIDs[c.Post],
				CreatorID:   userIDs[c.Creator],
				Description: c.Description,
				Timestamp:   c.Timestamp,
			}
			created, err := firstOrCreate(tx.Where("post_id = ? AND creator_id = ? AND description = ?",
				comment.PostID, comment.CreatorID, comment.Description), &comment)
			if err != nil {
				return fmt.Errorf("seed: comment on %q: %w", c.Post, err)
			}
			if created {
				report.Comments++
			}
		}

		votes := repository.NewVoteRepository(tx)
		for _, v := range fx.Votes {
			if err := votes.Upsert(ctx, userIDs[v.User], postIDs[v.Post], v.Value); err != nil {
				return fmt.Errorf("seed: vote by %q on %q: %w", v.User, v.Post, err)
			}
			report.Votes++
		}

		return nil
	})
	if err != nil {
		return Report{}, err
	}
	return report, nil
}

func ensureUser(tx *gorm.DB, u UserFixture) (*models.User, bool, error) {
	var user models.User
	err := tx.Where("username = ?", u.Username).First(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("seed: user %q: %w", u.Username, err)
	}

	hashed, err := services.HashPassword(u.Password)
	if err != nil {
		return nil, false, err
	}
	user = models.User{Username: u.Username, Password: hashed, Name: u.Name}
	if err := tx.Create(&user).Error; err != nil {
		return nil, false, fmt.Errorf("seed: user %q: %w", u.Username, err)
	}
	return &user, true, nil
}

// firstOrCreate loads the row matching query into dest, or inserts dest.
func firstOrCreate[T any](query *gorm.DB, dest *T) (bool, error) {
	var found T
	err := query.First(&found).Error
	if err == nil {
		*dest = found
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := query.Session(&gorm.Session{NewDB: true}).Create(dest).Error; err != nil {
		return false, err
	}
	return true, nil
}
