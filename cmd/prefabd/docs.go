package main

// General API documentation for swaggo. Regenerate with `swag init` before
// building with -tags=swagger.
//
// @title           prefabd API
// @version         1.0
// @description     HTTP API for fabrication-outcome prediction over device layout images.
//
// @contact.name   prefab maintainers
// @contact.url    https://github.com/your-org/prefab
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
