package config

const DefaultConfig = `
version: 1
watchlists:
  - name: default
    watches:
      - path: /tmp
        events: [create, delete]
        actions:
          - type: console
`
