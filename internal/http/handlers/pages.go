package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pages serves the unrestricted routes. They render unconditionally,
// whatever the session state; the actual content lives outside the
// gateway.
type Pages struct{}

// NewPages creates the public page handlers.
func NewPages() *Pages {
	return &Pages{}
}

// Home renders the landing page.
func (p *Pages) Home(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"page": "home"})
}

// Blogs renders the blog index.
func (p *Pages) Blogs(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"page": "blogs"})
}

// BlogPost renders a single blog entry.
func (p *Pages) BlogPost(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"page": "blog-post", "id": c.Param("id")})
}

// Support renders the support page.
func (p *Pages) Support(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"page": "support"})
}
