package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomchat/internal/core"
	"github.com/vovakirdan/roomchat/internal/proto"
)

const maxPageLimit = 100

// RoomHandlers serves read-only views of the live chat state.
type RoomHandlers struct {
	router *core.Router
	log    *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(router *core.Router, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		router: router,
		log:    logger,
	}
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// ListRoomsResponse represents the list rooms response.
type ListRoomsResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

// OnlineResponse lists logged-in usernames.
type OnlineResponse struct {
	Users []string `json:"users"`
}

// MessagesResponse is one page of a room's history, oldest first.
type MessagesResponse struct {
	Room     string          `json:"room"`
	Messages []proto.Message `json:"messages"`
}

// ListRooms returns every live room with its members.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	dir := h.router.Rooms()
	names := dir.Rooms()

	rooms := make([]RoomResponse, 0, len(names))
	for _, name := range names {
		rooms = append(rooms, RoomResponse{Name: name, Members: dir.MembersOf(name)})
	}
	c.JSON(http.StatusOK, ListRoomsResponse{Rooms: rooms})
}

// ListOnline returns the logged-in usernames.
// GET /api/online
func (h *RoomHandlers) ListOnline(c *gin.Context) {
	users := h.router.Identities().OnlineUsernames()
	if users == nil {
		users = []string{}
	}
	c.JSON(http.StatusOK, OnlineResponse{Users: users})
}

// ListMessages returns a page of history counted back from the newest message.
// GET /api/rooms/:room/messages?offset=0&limit=20
func (h *RoomHandlers) ListMessages(c *gin.Context) {
	room := c.Param("room")

	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
		return
	}
	limit, err := queryInt(c, "limit", proto.DefaultLoadMoreLimit)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		return
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	page := h.router.Messages().Page(room, offset, limit)
	h.log.Debug().Str("room", room).Int("offset", offset).Int("limit", limit).Int("count", len(page)).Msg("history page served")
	c.JSON(http.StatusOK, MessagesResponse{Room: room, Messages: wireMessages(page)})
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
