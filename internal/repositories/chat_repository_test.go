package repositories_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/anonto42/gooners/backend/internal/models"
	"github.com/anonto42/gooners/backend/internal/repositories"
	"github.com/anonto42/gooners/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGetOrCreatePrivateChatIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "a")
	testutil.CreateUser(t, db, "b")
	repo := repositories.NewPostgresChatRepository(db)
	ctx := context.Background()

	first, err := repo.GetOrCreatePrivateChat(ctx, "a", "b")
	require.NoError(t, err)
	second, err := repo.GetOrCreatePrivateChat(ctx, "b", "a")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, first.IsGroup)
	assert.Len(t, first.Members, 2)

	var rooms int64
	require.NoError(t, db.Model(&models.ChatRoom{}).Count(&rooms).Error)
	assert.Equal(t, int64(1), rooms)

	_, err = repo.GetOrCreatePrivateChat(ctx, "a", "a")
	assert.ErrorIs(t, err, repositories.ErrSelfRelation)
	_, err = repo.GetOrCreatePrivateChat(ctx, "a", "ghost")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}

func TestGetOrCreatePrivateChatLosesCreateRace(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "a")
	testutil.CreateUser(t, db, "b")
	repo := repositories.NewPostgresChatRepository(db)

	// Commit a competing room for the same pair right after the first
	// lookup misses, so the insert hits the unique private_key index.
	key := models.PairKey("a", "b")
	var winner *models.ChatRoom
	err := db.Callback().Query().After("gorm:query").Register("test:competing_private_chat", func(tx *gorm.DB) {
		if winner != nil || tx.Statement.Table != "chat_rooms" || tx.RowsAffected != 0 {
			return
		}
		winner = &models.ChatRoom{
			CreatedBy:  "b",
			PrivateKey: &key,
			Members:    []models.ChatRoomMember{{UserID: "a"}, {UserID: "b"}},
		}
		require.NoError(t, db.Session(&gorm.Session{NewDB: true}).Create(winner).Error)
	})
	require.NoError(t, err)

	room, err := repo.GetOrCreatePrivateChat(context.Background(), "a", "b")
	require.NoError(t, err)
	require.NotNil(t, winner, "competing room was never inserted")
	assert.Equal(t, winner.ID, room.ID)
	assert.Len(t, room.Members, 2)

	var rooms, members int64
	require.NoError(t, db.Model(&models.ChatRoom{}).Count(&rooms).Error)
	require.NoError(t, db.Model(&models.ChatRoomMember{}).Count(&members).Error)
	assert.Equal(t, int64(1), rooms)
	assert.Equal(t, int64(2), members)
}

func TestGetMessagesChronologicalTail(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "a")
	testutil.CreateUser(t, db, "b")
	repo := repositories.NewPostgresChatRepository(db)
	ctx := context.Background()

	room, err := repo.GetOrCreatePrivateChat(ctx, "a", "b")
	require.NoError(t, err)

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		sender := "a"
		if i%2 == 1 {
			sender = "b"
		}
		msg := &models.Message{
			ChatRoomID: room.ID,
			SenderID:   sender,
			Content:    fmt.Sprintf("m%d", i),
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.SendMessage(ctx, msg))
		assert.Equal(t, models.MessageText, msg.MessageType)
	}

	messages, err := repo.GetMessages(ctx, room.ID, "a", 3)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, []string{"m2", "m3", "m4"}, []string{messages[0].Content, messages[1].Content, messages[2].Content})
	require.NotNil(t, messages[1].Sender)
	assert.Equal(t, "b", messages[1].Sender.ID)

	all, err := repo.GetMessages(ctx, room.ID, "b", 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestChatMembershipRequired(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "a")
	testutil.CreateUser(t, db, "b")
	testutil.CreateUser(t, db, "c")
	repo := repositories.NewPostgresChatRepository(db)
	ctx := context.Background()

	room, err := repo.GetOrCreatePrivateChat(ctx, "a", "b")
	require.NoError(t, err)

	_, err = repo.GetMessages(ctx, room.ID, "c", 0)
	assert.ErrorIs(t, err, repositories.ErrNotChatMember)
	err = repo.SendMessage(ctx, &models.Message{ChatRoomID: room.ID, SenderID: "c", Content: "hi"})
	assert.ErrorIs(t, err, repositories.ErrNotChatMember)

	_, err = repo.GetMessages(ctx, "missing", "a", 0)
	assert.ErrorIs(t, err, repositories.ErrChatRoomNotFound)
}

func TestGetChatRoomsSummaries(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "a")
	testutil.CreateUser(t, db, "b")
	testutil.CreateUser(t, db, "c")
	repo := repositories.NewPostgresChatRepository(db)
	ctx := context.Background()

	private, err := repo.GetOrCreatePrivateChat(ctx, "a", "b")
	require.NoError(t, err)
	group, err := repo.CreateGroupChat(ctx, "a", "crew", []string{"b", "c", "b"})
	require.NoError(t, err)
	assert.True(t, group.IsGroup)
	assert.Len(t, group.Members, 3)

	require.NoError(t, repo.SendMessage(ctx, &models.Message{
		ChatRoomID: private.ID,
		SenderID:   "b",
		Content:    "latest",
		CreatedAt:  time.Now().UTC().Add(time.Hour),
	}))

	rooms, err := repo.GetChatRooms(ctx, "a")
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, private.ID, rooms[0].ID, "most recently active room first")
	require.NotNil(t, rooms[0].OtherUser)
	assert.Equal(t, "b", rooms[0].OtherUser.ID)
	require.NotNil(t, rooms[0].LastMessage)
	assert.Equal(t, "latest", rooms[0].LastMessage.Content)
	assert.Nil(t, rooms[1].OtherUser)
	assert.Nil(t, rooms[1].LastMessage)

	ids, err := repo.GetMemberIDs(ctx, group.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ids)

	_, err = repo.CreateGroupChat(ctx, "a", "bad", []string{"ghost"})
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}

func TestGlobalMessagesChronologicalTail(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "a")
	repo := repositories.NewPostgresGlobalMessageRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		msg := &models.GlobalMessage{SenderID: "a", Content: fmt.Sprintf("g%d", i), CreatedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, repo.SendGlobalMessage(ctx, msg))
		require.NotNil(t, msg.Sender)
	}

	messages, err := repo.GetGlobalMessages(ctx, 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "g2", messages[0].Content)
	assert.Equal(t, "g3", messages[1].Content)
}

func TestMessageTailsBreakTimestampTiesByID(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "a")
	testutil.CreateUser(t, db, "b")
	chats := repositories.NewPostgresChatRepository(db)
	global := repositories.NewPostgresGlobalMessageRepository(db)
	ctx := context.Background()

	room, err := chats.GetOrCreatePrivateChat(ctx, "a", "b")
	require.NoError(t, err)

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var roomIDs, globalIDs []string
	for i := 0; i < 4; i++ {
		msg := &models.Message{ChatRoomID: room.ID, SenderID: "a", Content: fmt.Sprintf("m%d", i), CreatedAt: at}
		require.NoError(t, chats.SendMessage(ctx, msg))
		roomIDs = append(roomIDs, msg.ID)

		gm := &models.GlobalMessage{SenderID: "a", Content: fmt.Sprintf("g%d", i), CreatedAt: at}
		require.NoError(t, global.SendGlobalMessage(ctx, gm))
		globalIDs = append(globalIDs, gm.ID)
	}
	sort.Strings(roomIDs)
	sort.Strings(globalIDs)

	messages, err := chats.GetMessages(ctx, room.ID, "a", 3)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	for i, m := range messages {
		assert.Equal(t, roomIDs[i+1], m.ID)
	}

	globals, err := global.GetGlobalMessages(ctx, 3)
	require.NoError(t, err)
	require.Len(t, globals, 3)
	for i, m := range globals {
		assert.Equal(t, globalIDs[i+1], m.ID)
	}
}
