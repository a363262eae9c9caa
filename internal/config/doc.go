// Package config provides configuration parsing for gobarber.
//
// The configuration is read from gobarber.yaml, gobarber.yml or
// gobarber.json in the working directory. Every field has a default, so a
// missing file is not an error. GOBARBER_* environment variables override
// the file, and command-line flags override both.
//
// # Configuration File Structure
//
//	server:
//	  host: 0.0.0.0
//	  port: 3333
//	api:
//	  baseURL: http://localhost:3334
//	  timeout: 10s
//	toast:
//	  dwellTime: 3s
//	session:
//	  cookieName: gobarber_session
//	  idleTimeout: 30m
//	upload:
//	  backend: s3
//	  s3:
//	    bucket: gobarber-avatars
//	    region: us-east-1
//	log:
//	  level: info
//	  format: text
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Server.Address())
package config
