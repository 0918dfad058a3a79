package help

const ColdstartYAML = `# localfeed Quick Start

match_modes:
  hybrid: "Location tags first, text scan fallback for locality and sub-region (default)"
  tags: "Explicit location tags only"
  text: "Scan title, excerpt and body for locality and sub-region names"

specificity:
  locality: "locality 50, subregion 25, region 15, rest 10"
  subregion: "subregion 60, region 25, rest 15"
  region: "region 80, rest 20"
  none: "rest 100"

commands:
  ingest: |
    localfeed ingest --urls "https://news.example.co.uk/a,https://news.example.co.uk/b"

  ingest_tagged: |
    localfeed ingest --urls "https://example.com/story" --region Yorkshire --locality Leeds --category news

  mix: |
    localfeed mix --region Yorkshire --locality Leeds -n 10

  mix_for_user: |
    localfeed mix --region Yorkshire --user ana --format json

  reproducible_mix: |
    localfeed mix --region Yorkshire -n 10 --seed 42

  prefs: |
    localfeed prefs get ana
    localfeed prefs set --local 70 ana
    localfeed prefs set --topical 40 --topic weather ana
    localfeed prefs tri --weights 50,30,20 --fixed 0 --value 60 ana

  items: |
    localfeed items list --region Yorkshire --since 24h
    localfeed items stats
    localfeed items prune --older-than 720h

  serve: |
    localfeed serve --addr :8080

http_api:
  feed: "GET /api/v1/feed?user=&region=&subregion=&locality=&n=&mode="
  get_prefs: "GET /api/v1/preferences/{user}"
  set_prefs: "PUT /api/v1/preferences/{user} {\"local\":70} or {\"topical\":30}"
  tri: "PUT /api/v1/preferences/{user}/tri {\"weights\":[50,30,20],\"fixed\":0,\"value\":60}"
  health: "GET /healthz"
  metrics: "GET /metrics"

config:
  file: "localfeed.yaml, /etc/localfeed/localfeed.yaml or --config"
  env: "LOCALFEED_SECTION_FIELD, e.g. LOCALFEED_SERVER_ADDR=:9090"

ratio_invariants:
  - "local + topical = 100 after every change"
  - "values outside 0-100 are clamped"
  - "a failed remote sync keeps the local write"

error_behavior:
  - "Malformed URLs: skipped before fetching"
  - "Exit codes: 0=success or partial, 1=every URL failed or bad input"
`
