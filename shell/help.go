package shell

const usage = `commands:
  deal                      deal a random board
  contract "4H by S"        set the contract and start play
  auction N 1S P 4S P P P   derive the contract from an auction
  vul [None|NS|EW|Both]     show or set vulnerability (before play starts)
  show (s)                  show the current position
  legal                     list legal cards for the seat on turn
  play <card>               play a card, e.g. play SA or play ♠A
  auto [n|out]              let the current tier play n cards (default 1)
  tier [name]               show or set the AI tier
                            (beginner, intermediate, advanced, expert)
  solve                     recommend a card without playing it
  score                     score the finished hand
  replay                    restart the current board from the opening lead
  save                      save the current board
  load <id>                 load a saved board
  recent [n]                list recently saved boards
  exit                      leave the shell`
