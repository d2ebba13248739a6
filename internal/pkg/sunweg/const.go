package sunweg

const (
	DefaultURL = "https://api.sunweg.net/v2/"

	loginPath       = "login/autenticacao"
	plantListPath   = "getpaineloperacao?procurar=&integrador=&franqueado=&manutencao=&portal=&alarme=&planos=%5B0,1,2,3,4%5D&status=%5B1,2,3,4,5%5D&limite=100&situacao=&paginaAtual=1"
	plantDetailPath = "viewresumov2?agrupado=false&id="
	inverterPath    = "inversores/view?id="
	monthStatsPath  = "usinas/graficomes?"

	tokenHeader = "X-Auth-Token-Update"

	defaultEnergyMetric = "kWh"
	defaultPowerMetric  = "kW"
)
