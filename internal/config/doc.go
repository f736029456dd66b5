// Package config provides configuration parsing for zenith projects.
//
// The configuration is stored in zenith.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "name": "my-app",
//	  "routesDir": "app/routes",
//	  "matchMode": "rank",
//	  "dev": {
//	    "port": 3000,
//	    "host": "localhost",
//	    "watch": ["app", "public"],
//	    "hotReload": true,
//	    "pollInterval": "500ms"
//	  },
//	  "build": {
//	    "output": "dist",
//	    "manifest": "dist/manifest.json"
//	  },
//	  "deploy": {
//	    "bucket": "my-app-site",
//	    "region": "us-east-1",
//	    "cacheControl": "public, max-age=60"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Routes:", cfg.RoutesPath())
package config
