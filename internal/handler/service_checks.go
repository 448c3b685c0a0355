package handler

import (
	"github.com/Soujiro-a/Menuger/internal/auth"
	"github.com/Soujiro-a/Menuger/internal/recipe"
	"github.com/Soujiro-a/Menuger/internal/user"
)

// --- compile-time interface checks ---

var _ AuthServiceInterface = (*auth.Service)(nil)
var _ UserServiceInterface = (*user.Service)(nil)
var _ RecipeServiceInterface = (*recipe.Service)(nil)
