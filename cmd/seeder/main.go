package main

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"github.com/anonto42/nano-midea/feedview/internal/models"
	"github.com/anonto42/nano-midea/feedview/internal/notifications"
	"github.com/anonto42/nano-midea/feedview/internal/repositories"
	"github.com/anonto42/nano-midea/feedview/pkg/config"
)

// seedPassword signs in every seeded user
const seedPassword = "password123"

type feedIDs struct {
	posts   string
	directs string
}

type seeder struct {
	users       *repositories.PostgresUserRepository
	subs        *repositories.PostgresSubscriptionRepository
	requests    *repositories.PostgresSubscriptionRequestRepository
	posts       *repositories.MongoPostRepository
	comments    *repositories.PostgresCommentRepository
	commentLike repositories.CommentLikeRepository
	likes       *repositories.PostgresLikeRepository
	attachments *repositories.PostgresAttachmentRepository
	events      repositories.NotificationRepository

	feeds map[string]feedIDs
}

func main() {
	// Seed gofakeit for random data generation.
	gofakeit.Seed(time.Now().UnixNano())

	cfg := config.Load()
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	if err := repositories.Migrate(db.Postgres); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}

	s := &seeder{
		users:       repositories.NewPostgresUserRepository(db.Postgres),
		subs:        repositories.NewPostgresSubscriptionRepository(db.Postgres),
		requests:    repositories.NewPostgresSubscriptionRequestRepository(db.Postgres),
		posts:       repositories.NewMongoPostRepository(db.Mongo.Database(cfg.MongoDatabase)),
		comments:    repositories.NewPostgresCommentRepository(db.Postgres),
		commentLike: repositories.NewPostgresCommentLikeRepository(db.Postgres),
		likes:       repositories.NewPostgresLikeRepository(db.Postgres),
		attachments: repositories.NewPostgresAttachmentRepository(db.Postgres),
		events:      repositories.NewPostgresNotificationRepository(db.Postgres),
		feeds:       map[string]feedIDs{},
	}
	ctx := context.Background()

	// 1. Users with their feeds and settings.
	people := s.createUsers(20)
	// 2. Groups, each administered by one or two of the users.
	groups := s.createGroups(people, 4)
	// 3. Subscriptions between users and to groups.
	s.createFollows(people, groups)
	// 4. Pending requests to private feeds and groups.
	s.createRequests(people, groups)
	// 5. Posts, some of them with attachments or sent as directs.
	posts := s.createPosts(ctx, people, groups, 60)
	// 6. Comments, likes and comment likes.
	s.createReactions(people, posts)

	log.Printf("Seeding finished: %d users, %d groups, %d posts. Sign in with password %q.",
		len(people), len(groups), len(posts), seedPassword)
}

func (s *seeder) register(u *models.User) bool {
	if err := s.users.CreateUser(u); err != nil {
		log.Printf("Error creating %s: %v", u.Username, err)
		return false
	}
	subs, err := s.subs.CreateFeeds(u.ID)
	if err != nil {
		log.Printf("Error creating feeds of %s: %v", u.Username, err)
		return false
	}
	var ids feedIDs
	for _, sub := range subs {
		switch {
		case sub.IsDirects():
			ids.directs = sub.ID
		case sub.Name == "Posts":
			ids.posts = sub.ID
		}
	}
	s.feeds[u.ID] = ids
	return true
}

func (s *seeder) createUsers(n int) []models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	var users []models.User
	seen := map[string]bool{}
	for len(users) < n {
		username := gofakeit.Username()
		if seen[username] || len(username) > 35 {
			continue
		}
		seen[username] = true

		u := models.User{
			Username:     username,
			ScreenName:   gofakeit.Name(),
			Type:         models.UserTypeUser,
			IsPrivate:    flag(gofakeit.Number(1, 5) == 1),
			IsProtected:  flag(gofakeit.Bool()),
			Description:  gofakeit.Sentence(8),
			PasswordHash: string(hash),
		}
		if u.IsPrivate == models.FlagOn {
			u.IsProtected = models.FlagOn
		}
		if !s.register(&u) {
			continue
		}
		s.createSettings(u.ID)
		users = append(users, u)
		log.Printf("createUsers: %s (private=%s)", u.Username, u.IsPrivate)
	}
	return users
}

func (s *seeder) createSettings(userID string) {
	prefs := models.DefaultFrontendPreferences()
	prefs.AllowLinksPreview = gofakeit.Bool()
	if gofakeit.Bool() {
		prefs.ReadMoreStyle = models.ReadMoreStyleExpanded
	}
	raw, err := json.Marshal(prefs)
	if err != nil {
		log.Printf("Error encoding preferences: %v", err)
		return
	}
	settings := &models.ViewerSettings{
		UserID:               userID,
		Preferences:          datatypes.JSON(raw),
		IsNSFWVisible:        gofakeit.Bool(),
		UnreadDirectsNumber:  gofakeit.Number(0, 3),
		AcceptDirectsFromAll: gofakeit.Bool(),
	}
	if err := s.users.SaveViewerSettings(settings); err != nil {
		log.Printf("Error saving settings of %s: %v", userID, err)
	}
}

func (s *seeder) createGroups(people []models.User, n int) []models.User {
	var groups []models.User
	for len(groups) < n {
		private := gofakeit.Number(1, 3) == 1
		g := models.User{
			Username:    strings.ReplaceAll(gofakeit.Animal(), " ", "") + gofakeit.DigitN(3),
			ScreenName:  gofakeit.HipsterWord() + " " + gofakeit.Animal() + " club",
			Type:        models.UserTypeGroup,
			IsPrivate:   flag(private),
			IsProtected: flag(private || gofakeit.Bool()),
			Description: gofakeit.Sentence(12),
		}
		if !s.register(&g) {
			continue
		}
		admins := pick(people, gofakeit.Number(1, 2))
		for _, a := range admins {
			if err := s.users.AddGroupAdmin(g.ID, a.ID); err != nil {
				log.Printf("Error adding admin %s to %s: %v", a.Username, g.Username, err)
			}
			s.follow(a, g)
		}
		s.event(admins[0].ID, models.NotificationEvent{EventType: string(notifications.GroupCreated), CreatedUserID: admins[0].ID, GroupID: g.ID})
		groups = append(groups, g)
		log.Printf("createGroups: %s administered by %s", g.Username, admins[0].Username)
	}
	return groups
}

func (s *seeder) follow(follower, target models.User) {
	err := s.subs.CreateFollow(&models.Follow{FollowerID: follower.ID, FollowingID: target.ID})
	if err != nil {
		log.Printf("Error following %s by %s: %v", target.Username, follower.Username, err)
	}
}

func (s *seeder) createFollows(people, groups []models.User) {
	for _, u := range people {
		for _, target := range pick(people, gofakeit.Number(2, 6)) {
			if target.ID == u.ID || target.IsPrivate == models.FlagOn {
				continue
			}
			s.follow(u, target)
			s.event(target.ID, models.NotificationEvent{EventType: string(notifications.UserSubscribed), CreatedUserID: u.ID, AffectedUserID: target.ID})
		}
		for _, g := range pick(groups, gofakeit.Number(0, 2)) {
			if g.IsPrivate == models.FlagOn {
				continue
			}
			s.follow(u, g)
		}
	}
}

func (s *seeder) createRequests(people, groups []models.User) {
	for _, u := range people {
		for _, target := range pick(append(append([]models.User{}, people...), groups...), 3) {
			if target.ID == u.ID || target.IsPrivate != models.FlagOn {
				continue
			}
			req := &models.SubscriptionRequest{SenderID: u.ID, ReceiverID: target.ID}
			ev := models.NotificationEvent{EventType: string(notifications.SubscriptionRequested), CreatedUserID: u.ID, AffectedUserID: target.ID}
			if target.IsGroup() {
				req.GroupID = target.ID
				ev = models.NotificationEvent{EventType: string(notifications.GroupSubscriptionRequested), CreatedUserID: u.ID, GroupID: target.ID}
			}
			if err := s.requests.SendRequest(req); err != nil {
				log.Printf("Error sending request from %s to %s: %v", u.Username, target.Username, err)
				continue
			}
			s.event(target.ID, ev)
		}
	}
}

func (s *seeder) createPosts(ctx context.Context, people, groups []models.User, n int) []models.Post {
	var posts []models.Post
	for i := 0; i < n; i++ {
		author := people[gofakeit.Number(0, len(people)-1)]
		post := models.Post{
			CreatedBy:        author.ID,
			Body:             gofakeit.Paragraph(1, gofakeit.Number(1, 4), 12, " "),
			CommentsDisabled: gofakeit.Number(1, 10) == 1,
			CreatedAt:        gofakeit.DateRange(time.Now().AddDate(0, -1, 0), time.Now()),
		}
		if gofakeit.Number(1, 8) == 1 {
			post.Body += " #nsfw"
		}

		var recipient *models.User
		switch gofakeit.Number(1, 6) {
		case 1:
			to := people[gofakeit.Number(0, len(people)-1)]
			if to.ID != author.ID {
				recipient = &to
				post.PostedTo = []string{s.feeds[author.ID].directs, s.feeds[to.ID].directs}
			}
		case 2, 3:
			g := groups[gofakeit.Number(0, len(groups)-1)]
			post.PostedTo = []string{s.feeds[g.ID].posts}
			if gofakeit.Bool() {
				post.PostedTo = append(post.PostedTo, s.feeds[author.ID].posts)
			}
		}
		if len(post.PostedTo) == 0 {
			post.PostedTo = []string{s.feeds[author.ID].posts}
		}
		post.Attachments = s.createAttachments(author.ID, gofakeit.Number(0, 2))

		if err := s.posts.CreatePost(ctx, &post); err != nil {
			log.Printf("Error creating post by %s: %v", author.Username, err)
			continue
		}
		if recipient != nil {
			s.event(recipient.ID, models.NotificationEvent{EventType: string(notifications.Direct), CreatedUserID: author.ID, AffectedUserID: recipient.ID, PostID: post.ID, PostAuthorID: author.ID})
		}
		posts = append(posts, post)
	}
	log.Printf("createPosts: %d posts", len(posts))
	return posts
}

func (s *seeder) createAttachments(authorID string, n int) []string {
	var ids []string
	for i := 0; i < n; i++ {
		att := &models.Attachment{
			MediaType:    "image",
			FileName:     gofakeit.Word() + ".jpg",
			URL:          gofakeit.ImageURL(1024, 768),
			ThumbnailURL: gofakeit.ImageURL(175, 175),
			CreatedBy:    authorID,
			CreatedAt:    time.Now(),
		}
		if err := s.attachments.CreateAttachment(att); err != nil {
			log.Printf("Error creating attachment: %v", err)
			continue
		}
		ids = append(ids, att.ID)
	}
	return ids
}

func (s *seeder) createReactions(people []models.User, posts []models.Post) {
	for _, post := range posts {
		for _, u := range pick(people, gofakeit.Number(0, 6)) {
			if err := s.likes.CreateLike(&models.Like{PostID: post.ID, UserID: u.ID}); err != nil {
				log.Printf("Error liking %s: %v", post.ID, err)
			}
		}
		if post.CommentsDisabled {
			continue
		}

		at := post.CreatedAt
		for i := gofakeit.Number(0, 8); i > 0; i-- {
			author := people[gofakeit.Number(0, len(people)-1)]
			at = at.Add(time.Duration(gofakeit.Number(1, 240)) * time.Minute)
			c := &models.Comment{PostID: post.ID, CreatedBy: author.ID, Body: gofakeit.Sentence(gofakeit.Number(3, 15)), CreatedAt: at}

			mentioned := people[gofakeit.Number(0, len(people)-1)]
			if gofakeit.Number(1, 5) == 1 {
				c.Body = "@" + mentioned.Username + " " + c.Body
			}
			if err := s.comments.CreateComment(c); err != nil {
				log.Printf("Error commenting on %s: %v", post.ID, err)
				continue
			}
			if c.Body[0] == '@' {
				s.event(mentioned.ID, models.NotificationEvent{EventType: string(notifications.MentionInComment), CreatedUserID: author.ID, AffectedUserID: mentioned.ID, PostID: post.ID, PostAuthorID: post.CreatedBy, CommentID: c.ID})
			}
			for _, u := range pick(people, gofakeit.Number(0, 3)) {
				if err := s.commentLike.CreateCommentLike(&models.CommentLike{CommentID: c.ID, UserID: u.ID}); err != nil {
					log.Printf("Error liking comment %s: %v", c.ID, err)
				}
			}
		}
	}
}

// event records ev for recipientID and bumps the recipient's unread count
func (s *seeder) event(recipientID string, ev models.NotificationEvent) {
	ev.RecipientID = recipientID
	ev.Date = gofakeit.DateRange(time.Now().AddDate(0, 0, -14), time.Now())
	if err := s.events.CreateEvent(&ev); err != nil {
		log.Printf("Error creating %s event: %v", ev.EventType, err)
		return
	}
	settings, err := s.users.GetViewerSettings(recipientID)
	if err != nil {
		return
	}
	settings.UnreadNotificationsNumber++
	if err := s.users.SaveViewerSettings(settings); err != nil {
		log.Printf("Error saving settings of %s: %v", recipientID, err)
	}
}

func flag(on bool) string {
	if on {
		return models.FlagOn
	}
	return models.FlagOff
}

// pick returns up to n distinct random entries of users
func pick(users []models.User, n int) []models.User {
	shuffled := append([]models.User{}, users...)
	gofakeit.ShuffleAnySlice(shuffled)
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
