package httpapi

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-favorites/internal/account"
	"github.com/i474232898/weather-favorites/internal/apperror"
	"github.com/i474232898/weather-favorites/internal/favorites"
	"github.com/i474232898/weather-favorites/internal/weather"
)

// defaultFanOut bounds concurrent provider calls for one list request.
const defaultFanOut = 4

// Handlers holds the services behind the HTTP surface. Each request is
// independent; the credential sent with it is the only continuity.
type Handlers struct {
	accounts  *account.Service
	favorites *favorites.Service
	weather   *weather.Gateway
	log       logrus.FieldLogger
	fanOut    int
}

func NewHandlers(accounts *account.Service, favs *favorites.Service, gw *weather.Gateway, log logrus.FieldLogger) *Handlers {
	return &Handlers{
		accounts:  accounts,
		favorites: favs,
		weather:   gw,
		log:       log.WithField("component", "http"),
		fanOut:    defaultFanOut,
	}
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, h *Handlers) {
	app.Post("/create-account", h.createAccount)
	app.Post("/login", h.login)
	app.Post("/update-password", h.updatePassword)

	api := app.Group("/api")
	api.Get("/health", h.health)

	api.Post("/favorites", fallback(msgCoordinates), h.addFavorite)
	api.Get("/favorites", h.listFavorites)
	api.Get("/favorites/weather", h.listFavoritesWithWeather)
	api.Get("/favorites/:id/weather", fallback(msgWeather), h.favoriteWeather)
	api.Get("/favorites/:id/historical", fallback(msgHistorical), h.favoriteHistorical)
	api.Get("/favorites/:id/forecast", fallback(msgForecast), h.favoriteForecast)
}

func (h *Handlers) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

func (h *Handlers) createAccount(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := bindBody(c, &req, "Invalid request payload. 'username' and 'password' are required."); err != nil {
		return err
	}

	if _, err := h.accounts.CreateUser(c.UserContext(), req.Username, req.Password); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("Account created successfully for user '%s'.", req.Username),
	})
}

func (h *Handlers) login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := bindBody(c, &req, "Invalid request payload. 'username' and 'password' are required."); err != nil {
		return err
	}

	user, err := h.authenticate(c, req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("User '%s' authenticated successfully.", user.Username),
	})
}

func (h *Handlers) updatePassword(c *fiber.Ctx) error {
	var req updatePasswordRequest
	if err := bindBody(c, &req,
		"Invalid request payload. 'username', 'current_password', and 'new_password' are required."); err != nil {
		return err
	}

	if _, err := h.authenticate(c, req.Username, req.CurrentPassword); err != nil {
		return err
	}

	if err := h.accounts.UpdatePassword(c.UserContext(), req.Username, req.NewPassword); err != nil {
		// The user vanished between authentication and update.
		if ae, ok := apperror.As(err); ok && ae.Kind == apperror.NotFound {
			return apperror.NewValidationError(ae.Message, err)
		}
		return err
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Password updated successfully for user '%s'.", req.Username),
	})
}

func (h *Handlers) addFavorite(c *fiber.Ctx) error {
	var req addFavoriteRequest
	if err := bindBody(c, &req,
		"Invalid request payload. 'username', 'password', and 'location_name' are required."); err != nil {
		return err
	}

	user, err := h.authenticate(c, req.Username, req.Password)
	if err != nil {
		return err
	}
	if err := favorites.ValidateName(req.LocationName); err != nil {
		return err
	}

	coords, err := h.weather.Geocode(c.UserContext(), req.LocationName)
	if err != nil {
		return err
	}

	fav, err := h.favorites.Add(c.UserContext(), user.ID, req.LocationName, coords.Latitude, coords.Longitude)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":           fmt.Sprintf("Favorite location '%s' added successfully.", fav.LocationName),
		"favorite_location": fav,
	})
}

func (h *Handlers) listFavorites(c *fiber.Ctx) error {
	user, err := h.authenticateQuery(c)
	if err != nil {
		return err
	}

	favs, err := h.favorites.List(c.UserContext(), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"favorites": favs})
}

// favoriteWeather is one list entry; CurrentWeather is null when the
// provider failed for that location.
type favoriteWeather struct {
	favorites.Favorite
	CurrentWeather *weather.CurrentWeather `json:"current_weather"`
	Error          string                  `json:"error,omitempty"`
}

func (h *Handlers) listFavoritesWithWeather(c *fiber.Ctx) error {
	user, err := h.authenticateQuery(c)
	if err != nil {
		return err
	}

	favs, err := h.favorites.List(c.UserContext(), user.ID)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	out := make([]favoriteWeather, len(favs))

	var g errgroup.Group
	g.SetLimit(h.fanOut)
	for i, fav := range favs {
		i, fav := i, fav
		g.Go(func() error {
			out[i] = favoriteWeather{Favorite: fav}
			cw, err := h.weather.CurrentWeather(ctx, fav.Latitude, fav.Longitude)
			if err != nil {
				out[i].Error = msgWeather
				return nil
			}
			out[i].CurrentWeather = &cw
			return nil
		})
	}
	// Per-item failures are recorded in out; the group never fails.
	_ = g.Wait()

	return c.JSON(fiber.Map{"favorites": out})
}

func (h *Handlers) favoriteWeather(c *fiber.Ctx) error {
	fav, err := h.ownedFavorite(c)
	if err != nil {
		return err
	}

	cw, err := h.weather.CurrentWeather(c.UserContext(), fav.Latitude, fav.Longitude)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"favorite_location": fav,
		"current_weather":   cw,
	})
}

func (h *Handlers) favoriteHistorical(c *fiber.Ctx) error {
	var q historicalQuery
	if err := bindQuery(c, &q, "Missing 'start_date' or 'end_date' query parameters."); err != nil {
		return err
	}

	user, err := h.authenticate(c, q.Username, q.Password)
	if err != nil {
		return err
	}
	id, err := favoriteID(c)
	if err != nil {
		return err
	}

	hq, err := h.favorites.ResolveForHistorical(c.UserContext(), user.ID, id, q.StartDate, q.EndDate)
	if err != nil {
		return err
	}

	days, err := h.weather.HistoricalWeather(c.UserContext(), hq.Latitude, hq.Longitude, hq.StartDate, hq.EndDate)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"favorite_location":  hq.Favorite,
		"historical_weather": days,
	})
}

func (h *Handlers) favoriteForecast(c *fiber.Ctx) error {
	days := weather.DefaultForecastDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return apperror.NewValidationError("Query parameter 'days' must be an integer.", err)
		}
		days = n
	}

	fav, err := h.ownedFavorite(c)
	if err != nil {
		return err
	}

	forecast, err := h.weather.Forecast(c.UserContext(), fav.Latitude, fav.Longitude, days)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"favorite_location": fav,
		"weather_forecast":  forecast,
	})
}

func (h *Handlers) authenticate(c *fiber.Ctx, username, password string) (account.User, error) {
	res := h.accounts.Authenticate(c.UserContext(), username, password)
	if !res.OK() {
		return account.User{}, res.AsError()
	}
	return res.User, nil
}

func (h *Handlers) authenticateQuery(c *fiber.Ctx) (account.User, error) {
	return h.authenticate(c, c.Query("username"), c.Query("password"))
}

// ownedFavorite authenticates the query credential and loads the favorite
// named by the path, if the caller owns it.
func (h *Handlers) ownedFavorite(c *fiber.Ctx) (favorites.Favorite, error) {
	user, err := h.authenticateQuery(c)
	if err != nil {
		return favorites.Favorite{}, err
	}
	id, err := favoriteID(c)
	if err != nil {
		return favorites.Favorite{}, err
	}
	return h.favorites.Get(c.UserContext(), user.ID, id)
}

// favoriteID parses the :id segment. Anything but a positive integer is
// reported the same way as an unknown id.
func favoriteID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.NewNotFoundError(
			fmt.Sprintf("Favorite location with ID '%s' not found.", raw), favorites.ErrNotFound)
	}
	return id, nil
}
