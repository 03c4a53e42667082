package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yanqian/quiz-catalog/internal/domain/auth"
)

const authUserKey = "auth_user"

func setUser(c *gin.Context, user auth.User) {
	c.Set(authUserKey, user)
}

func currentUser(c *gin.Context) (auth.User, bool) {
	value, ok := c.Get(authUserKey)
	if !ok {
		return auth.User{}, false
	}
	user, ok := value.(auth.User)
	return user, ok
}

// userID is empty for anonymous requests.
func userID(c *gin.Context) string {
	user, _ := currentUser(c)
	return user.ID
}
